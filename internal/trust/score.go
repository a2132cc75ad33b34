package trust

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/ledger"
)

// Factor weights. They sum to 1.0; NewScorer rejects any drift if the
// set is ever edited.
const (
	weightHistory     = 0.15
	weightTasks       = 0.25
	weightAnomalies   = 0.25
	weightConsistency = 0.20
	weightCompliance  = 0.15
)

// Factor names as they appear in Score.Factors.
const (
	FactorHistory     = "history_depth"
	FactorTasks       = "task_completion"
	FactorAnomalies   = "anomaly_frequency"
	FactorConsistency = "transaction_consistency"
	FactorCompliance  = "compliance_adherence"
)

// Scorer computes agent trust scores and transaction risk evaluations
// over a read-only store. All scoring is synchronous and CPU-only;
// step-function tiers resist gaming by marginal increments.
type Scorer struct {
	store Store
	now   func() time.Time
}

// NewScorer builds a scorer over the given store.
func NewScorer(store Store) (*Scorer, error) {
	if store == nil {
		return nil, errors.New("trust: store is required")
	}
	sum := weightHistory + weightTasks + weightAnomalies + weightConsistency + weightCompliance
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("trust: factor weights sum to %v, want 1.0", sum)
	}
	return &Scorer{store: store, now: time.Now}, nil
}

// AgentTrustScore computes the five weighted factors for agentID and
// combines them into an overall score and level.
func (s *Scorer) AgentTrustScore(agentID string) Score {
	actions := s.store.ActionsByAgent(agentID)
	txs := s.store.TransactionsByAgent(agentID)
	tasks := s.store.QueryTasks(func(t ledger.Task) bool { return t.AgentID == agentID })
	anomalies := s.store.QueryAnomalies(func(a ledger.Anomaly) bool { return a.AgentID == agentID })

	factors := []Factor{
		historyDepthFactor(len(actions)),
		taskCompletionFactor(tasks),
		anomalyFrequencyFactor(anomalies, len(actions)),
		consistencyFactor(txs),
		complianceFactor(tasks, len(txs)),
	}

	var weighted, weightSum float64
	for _, f := range factors {
		weighted += float64(f.Score) * f.Weight
		weightSum += f.Weight
	}
	score := clamp(round(weighted / weightSum))

	return Score{
		AgentID:    agentID,
		Score:      score,
		Level:      LevelFor(score),
		Factors:    factors,
		ComputedAt: s.now().UTC(),
	}
}

// historyDepthFactor rewards accumulated activity in coarse steps.
func historyDepthFactor(actions int) Factor {
	var score int
	switch {
	case actions == 0:
		score = 10
	case actions < 5:
		score = 30
	case actions < 20:
		score = 50
	case actions < 50:
		score = 70
	case actions < 100:
		score = 85
	default:
		score = 95
	}
	return Factor{
		Name:        FactorHistory,
		Score:       score,
		Weight:      weightHistory,
		Description: fmt.Sprintf("%d recorded actions", actions),
	}
}

// taskCompletionFactor scores completion against failure. Failures cost
// three times what completions gain.
func taskCompletionFactor(tasks []ledger.Task) Factor {
	f := Factor{Name: FactorTasks, Weight: weightTasks}
	if len(tasks) == 0 {
		f.Score = 50
		f.Description = "no tasks recorded"
		return f
	}

	var completed, failed int
	for _, t := range tasks {
		switch t.Status {
		case ledger.TaskCompleted:
			completed++
		case ledger.TaskFailed:
			failed++
		}
	}
	completionRate := float64(completed) / float64(len(tasks))
	failureRate := float64(failed) / float64(len(tasks))
	f.Score = clamp(round(completionRate*100 - failureRate*30))
	f.Description = fmt.Sprintf("%d of %d tasks completed, %d failed", completed, len(tasks), failed)
	return f
}

// anomalyFrequencyFactor steps down with the anomaly/action ratio, then
// subtracts a severity-weighted penalty for critical and high anomalies.
func anomalyFrequencyFactor(anomalies []ledger.Anomaly, actions int) Factor {
	f := Factor{Name: FactorAnomalies, Weight: weightAnomalies}
	if actions == 0 {
		f.Score = 50
		f.Description = "no action history"
		return f
	}

	ratio := float64(len(anomalies)) / float64(actions)
	var score int
	switch {
	case ratio == 0:
		score = 100
	case ratio < 0.05:
		score = 85
	case ratio < 0.10:
		score = 65
	case ratio < 0.15:
		score = 45
	case ratio < 0.25:
		score = 25
	default:
		score = 10
	}

	var critical, high int
	for _, a := range anomalies {
		switch a.Severity {
		case ledger.AnomalyCritical:
			critical++
		case ledger.AnomalyHigh:
			high++
		}
	}
	score -= critical*15 + high*8

	f.Score = clamp(score)
	f.Description = fmt.Sprintf("%d anomalies over %d actions (%d critical, %d high)",
		len(anomalies), actions, critical, high)
	return f
}

// consistencyFactor maps the coefficient of variation of transaction
// amounts to a score, with a penalty for spray patterns (mostly unique
// destinations across more than five transactions).
func consistencyFactor(txs []ledger.Transaction) Factor {
	f := Factor{Name: FactorConsistency, Weight: weightConsistency}

	var amounts []float64
	for _, tx := range txs {
		if v, ok := parseAmount(tx.Amount); ok {
			amounts = append(amounts, v)
		}
	}
	if len(amounts) < 2 {
		f.Score = 50
		f.Description = "fewer than two valid amounts"
		return f
	}

	var sum float64
	for _, v := range amounts {
		sum += v
	}
	mean := sum / float64(len(amounts))
	var variance float64
	for _, v := range amounts {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(amounts))
	cv := math.Sqrt(variance) / mean

	var score int
	switch {
	case cv < 0.1:
		score = 95
	case cv < 0.3:
		score = 80
	case cv < 0.6:
		score = 65
	case cv < 1.0:
		score = 50
	case cv < 1.5:
		score = 35
	case cv < 2.0:
		score = 25
	default:
		score = 15
	}

	if len(txs) > 5 {
		unique := make(map[string]bool)
		for _, tx := range txs {
			unique[normalizeAddress(tx.Destination)] = true
		}
		if float64(len(unique))/float64(len(txs)) > 0.8 {
			score -= 15
		}
	}

	f.Score = clamp(score)
	f.Description = fmt.Sprintf("amount CV %.2f over %d transactions", cv, len(txs))
	return f
}

// complianceFactor starts from base 50 and adds evidence and coverage
// bonuses. Coverage compares task volume against transaction volume.
func complianceFactor(tasks []ledger.Task, transactions int) Factor {
	f := Factor{Name: FactorCompliance, Weight: weightCompliance}

	var confirmed, withEvidence int
	for _, t := range tasks {
		if t.Status == ledger.TaskCompleted {
			confirmed++
			if t.HasEvidence() {
				withEvidence++
			}
		}
	}

	var evidenceRate float64
	if confirmed > 0 {
		evidenceRate = float64(withEvidence) / float64(confirmed)
	}

	var coverageRate float64
	switch {
	case transactions > 0:
		coverageRate = math.Min(float64(len(tasks))/float64(transactions), 1)
	case len(tasks) > 0:
		coverageRate = 1
	}

	f.Score = clamp(50 + round(evidenceRate*30) + round(coverageRate*20))
	f.Description = fmt.Sprintf("evidence on %d of %d confirmed tasks, %d tasks over %d transactions",
		withEvidence, confirmed, len(tasks), transactions)
	return f
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}

// parseAmount accepts a positive finite decimal. Anything else counts
// as unparsable and degrades the affected factor to neutral.
func parseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
