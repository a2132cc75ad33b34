package engine

import (
	"fmt"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/alert"
	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/screening"
)

// forcedReview reports whether the aggregator downgraded this result to
// REVIEW because too few providers answered.
func forcedReview(res model.ScreeningResult) bool {
	for _, pr := range res.ProviderResults {
		if pr.Provider == screening.DiagnosticSource {
			return true
		}
	}
	return false
}

// screeningReason picks the description of the most severe signal, or
// falls back to the numeric score.
func screeningReason(res model.ScreeningResult) string {
	var reason string
	best := -1
	for _, sig := range res.Signals() {
		if r := sig.Severity.Rank(); r > best && sig.Description != "" {
			best = r
			reason = sig.Description
		}
	}
	if reason == "" {
		reason = fmt.Sprintf("risk score %d", res.RiskScore)
	}
	return reason
}

// alertScreening dispatches an event for a screening outcome that
// warrants attention: a block, or a forced review.
func (e *Engine) alertScreening(kind string, res model.ScreeningResult) {
	forced := forcedReview(res)
	if res.Decision != model.Block && !forced {
		return
	}
	evt := alert.Event{
		Timestamp: e.now().UTC().Format(time.RFC3339),
		RequestID: res.RequestID,
		Kind:      kind,
		Address:   res.Address,
		Chain:     res.Chain,
		Decision:  string(res.Decision),
		Severity:  string(res.Severity),
		RiskScore: res.RiskScore,
		Reason:    screeningReason(res),
	}
	if forced {
		evt.Type = "forced_review"
	}
	e.alerts.Dispatch(evt)
}

// alertVerdict dispatches an event for a verified transaction whose
// combined decision is BLOCK, or where either screening leg was forced
// into review.
func (e *Engine) alertVerdict(v Verdict) {
	forced := forcedReview(v.Screening.From) || forcedReview(v.Screening.To)
	if v.Decision != model.Block && !forced {
		return
	}
	leg := worseLeg(v.Screening)
	reason := screeningReason(leg)
	if v.Risk.Recommendation.Rank() >= v.Screening.Decision.Rank() {
		reason = fmt.Sprintf("risk evaluation scored %d for agent %s", v.Risk.Score, v.Transaction.AgentID)
	}
	evt := alert.Event{
		Timestamp: e.now().UTC().Format(time.RFC3339),
		RequestID: leg.RequestID,
		Kind:      "transaction",
		Address:   v.Transaction.Destination,
		Chain:     v.Transaction.Chain,
		AgentID:   v.Transaction.AgentID,
		Decision:  string(v.Decision),
		Severity:  string(leg.Severity),
		RiskScore: leg.RiskScore,
		Reason:    reason,
	}
	if forced {
		evt.Type = "forced_review"
	}
	e.alerts.Dispatch(evt)
}
