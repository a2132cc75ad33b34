package engine

import (
	"context"
	"fmt"

	"github.com/ledgerguard/ledgerguard/internal/digest"
	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/screening"
	"github.com/ledgerguard/ledgerguard/internal/trust"
)

// Chain entry actors and kinds written by the engine.
const (
	actorScreening = "screening"

	kindAction      = "action.recorded"
	kindTask        = "task.recorded"
	kindAnomaly     = "anomaly.recorded"
	kindScreening   = "screening.address"
	kindTransaction = "transaction.verdict"
)

// Verdict is the engine's combined judgment on one candidate
// transaction. Decision is the worse of the scorer's recommendation
// and the screening outcome of both addresses.
type Verdict struct {
	Transaction ledger.Transaction         `json:"transaction"`
	Risk        trust.RiskEvaluation       `json:"risk"`
	Screening   model.TransactionScreening `json:"screening"`
	Decision    model.Decision             `json:"decision"`
	Flagged     bool                       `json:"flagged"`
	Recorded    bool                       `json:"recorded"`
	ChainIndex  int                        `json:"chain_index"`
}

// ProcessAction records an agent action in the ledger and appends it to
// the digest chain.
func (e *Engine) ProcessAction(a ledger.Action) (ledger.Action, digest.Link, error) {
	stored := e.Ledger.RecordAction(a)

	entry := digest.NewEntry(stored.AgentID, kindAction, stored.Kind)
	entry.CorrelationID = stored.ID
	if stored.Status != "" {
		entry.Metadata = map[string]any{"status": stored.Status}
	}
	link, err := e.appendChain(entry)
	if err != nil {
		return stored, digest.Link{}, err
	}

	e.logger.Info("action recorded",
		"agent_id", stored.AgentID,
		"kind", stored.Kind,
		"chain_index", link.Index)
	return stored, link, nil
}

// RecordTask records a unit of agent work and appends it to the chain.
func (e *Engine) RecordTask(t ledger.Task) (ledger.Task, digest.Link, error) {
	stored := e.Ledger.RecordTask(t)

	entry := digest.NewEntry(stored.AgentID, kindTask, stored.Kind)
	entry.CorrelationID = stored.ID
	entry.Metadata = map[string]any{
		"status":   stored.Status,
		"evidence": len(stored.Evidence),
	}
	link, err := e.appendChain(entry)
	if err != nil {
		return stored, digest.Link{}, err
	}
	return stored, link, nil
}

// RecordAnomaly records an irregularity against an agent and appends it
// to the chain.
func (e *Engine) RecordAnomaly(a ledger.Anomaly) (ledger.Anomaly, digest.Link, error) {
	stored := e.Ledger.RecordAnomaly(a)

	entry := digest.NewEntry(stored.AgentID, kindAnomaly, stored.Description)
	entry.CorrelationID = stored.ID
	entry.Metadata = map[string]any{
		"severity": stored.Severity,
		"anomaly":  stored.Kind,
	}
	link, err := e.appendChain(entry)
	if err != nil {
		return stored, digest.Link{}, err
	}

	e.logger.Info("anomaly recorded",
		"agent_id", stored.AgentID,
		"severity", stored.Severity,
		"kind", stored.Kind)
	return stored, link, nil
}

// ScreenAddress screens one address, appends the outcome to the chain,
// persists the result when a store is configured, and dispatches alerts
// for blocking or forced-review outcomes.
func (e *Engine) ScreenAddress(ctx context.Context, in screening.Input) (model.ScreeningResult, error) {
	res := e.Screening.ScreenAddress(ctx, in)

	entry := digest.NewEntry(actorScreening, kindScreening,
		fmt.Sprintf("address %s: %s", in.Address, res.Decision))
	entry.CorrelationID = res.RequestID
	entry.Metadata = map[string]any{
		"decision":   string(res.Decision),
		"severity":   string(res.Severity),
		"risk_score": res.RiskScore,
	}
	if _, err := e.appendChain(entry); err != nil {
		return res, err
	}

	e.saveScreening(ctx, res)
	e.alertScreening("screening", res)
	return res, nil
}

// ScreenTransaction screens both sides of a transfer without touching
// the ledger or the scorer. The chain records one entry for the pair.
func (e *Engine) ScreenTransaction(ctx context.Context, from, to, amount, chain string) (model.TransactionScreening, error) {
	res := e.Screening.ScreenTransaction(ctx, from, to, amount, chain)

	entry := digest.NewEntry(actorScreening, kindTransaction,
		fmt.Sprintf("transfer %s to %s: %s", from, to, res.Decision))
	entry.CorrelationID = res.To.RequestID
	entry.Metadata = map[string]any{
		"decision":   string(res.Decision),
		"from_score": res.From.RiskScore,
		"to_score":   res.To.RiskScore,
	}
	if _, err := e.appendChain(entry); err != nil {
		return res, err
	}

	e.saveScreening(ctx, res.From)
	e.saveScreening(ctx, res.To)
	e.alertScreening("transaction", worseLeg(res))
	return res, nil
}

// VerifyTransaction runs the full decision pipeline for one candidate
// transfer: evaluate risk from the agent's history, screen the
// addresses, and combine under approve < review < block. The transfer
// is recorded in the ledger only when the combined decision is not
// BLOCK; a blocked transfer records a high-severity anomaly instead, so
// the refusal itself feeds future trust scores.
func (e *Engine) VerifyTransaction(ctx context.Context, tx ledger.Transaction) (Verdict, error) {
	risk := e.Scorer.EvaluateTransaction(trust.TransactionInput{
		AgentID:     tx.AgentID,
		Amount:      tx.Amount,
		Destination: tx.Destination,
		Chain:       tx.Chain,
	})
	e.metrics.IncRiskEvaluation(string(risk.Recommendation))

	screen := e.screenTransfer(ctx, tx)
	decision := model.WorseDecision(risk.Recommendation, screen.Decision)

	verdict := Verdict{
		Transaction: tx,
		Risk:        risk,
		Screening:   screen,
		Decision:    decision,
		Flagged:     risk.Flagged,
	}

	if decision == model.Block {
		e.Ledger.RecordAnomaly(ledger.Anomaly{
			AgentID:     tx.AgentID,
			Severity:    ledger.AnomalyHigh,
			Kind:        "transaction_blocked",
			Description: fmt.Sprintf("transfer of %s to %s blocked", tx.Amount, tx.Destination),
		})
	} else {
		verdict.Transaction = e.Ledger.RecordTransaction(tx)
		verdict.Recorded = true
	}

	entry := digest.NewEntry(actorScreening, kindTransaction,
		fmt.Sprintf("agent %s transfer of %s to %s: %s", tx.AgentID, tx.Amount, tx.Destination, decision))
	entry.CorrelationID = screen.To.RequestID
	entry.Metadata = map[string]any{
		"decision":     string(decision),
		"risk_score":   risk.Score,
		"screen_score": worseLeg(screen).RiskScore,
		"flagged":      risk.Flagged,
		"recorded":     verdict.Recorded,
	}
	link, err := e.appendChain(entry)
	if err != nil {
		return verdict, err
	}
	verdict.ChainIndex = link.Index

	e.saveScreening(ctx, screen.From)
	e.saveScreening(ctx, screen.To)
	e.alertVerdict(verdict)

	e.logger.Info("transaction verified",
		"agent_id", tx.AgentID,
		"amount", tx.Amount,
		"destination", tx.Destination,
		"decision", string(decision),
		"risk_score", risk.Score,
		"recorded", verdict.Recorded)
	return verdict, nil
}

// EvaluateRisk scores a candidate transaction against the agent's
// history without screening or recording anything.
func (e *Engine) EvaluateRisk(in trust.TransactionInput) trust.RiskEvaluation {
	ev := e.Scorer.EvaluateTransaction(in)
	e.metrics.IncRiskEvaluation(string(ev.Recommendation))
	return ev
}

// TrustReport computes the agent's current trust score. Unknown agents
// score as new agents rather than erroring.
func (e *Engine) TrustReport(agentID string) trust.Score {
	return e.Scorer.AgentTrustScore(agentID)
}

// HealthCheck probes every screening provider.
func (e *Engine) HealthCheck(ctx context.Context) map[string]bool {
	return e.Screening.HealthCheck(ctx)
}

// screenTransfer screens the transaction's addresses. A transfer
// without a source address screens the destination only; the from leg
// reports a clean pass so Verdict JSON stays well-formed.
func (e *Engine) screenTransfer(ctx context.Context, tx ledger.Transaction) model.TransactionScreening {
	if tx.Source != "" {
		return e.Screening.ScreenTransaction(ctx, tx.Source, tx.Destination, tx.Amount, tx.Chain)
	}
	to := e.Screening.ScreenAddress(ctx, screening.Input{
		Address:   tx.Destination,
		Chain:     tx.Chain,
		Direction: model.DirectionIncoming,
		Amount:    tx.Amount,
	})
	return model.TransactionScreening{
		From: model.ScreeningResult{
			Decision:   model.Approve,
			Severity:   model.SeverityNone,
			ScreenedAt: to.ScreenedAt,
		},
		To:       to,
		Decision: to.Decision,
	}
}

// appendChain appends the entry and keeps the chain metrics current.
func (e *Engine) appendChain(entry digest.Entry) (digest.Link, error) {
	link, err := e.Chain.Append(entry)
	if err != nil {
		return digest.Link{}, fmt.Errorf("engine: append %s to chain: %w", entry.Kind, err)
	}
	e.metrics.IncChainAppend()
	e.metrics.SetChainLength(e.Chain.Len())
	return link, nil
}

// worseLeg returns the leg of a pairwise screening that drove the
// decision, preferring the destination on ties.
func worseLeg(res model.TransactionScreening) model.ScreeningResult {
	if res.From.Decision.Rank() > res.To.Decision.Rank() {
		return res.From
	}
	return res.To
}
