package model

import "time"

// ScreeningResult is the aggregator's unified verdict for one address.
type ScreeningResult struct {
	RequestID          string           `json:"request_id,omitempty"`
	Address            string           `json:"address"`
	Chain              string           `json:"chain,omitempty"`
	Decision           Decision         `json:"decision"`
	Severity           Severity         `json:"severity"`
	RiskScore          int              `json:"risk_score"`
	Categories         []string         `json:"categories,omitempty"`
	Actions            []string         `json:"actions,omitempty"`
	ProviderResults    []ProviderResult `json:"provider_results,omitempty"`
	ProvidersConsulted int              `json:"providers_consulted"`
	ProvidersSucceeded int              `json:"providers_succeeded"`
	TotalLatencyMs     int64            `json:"total_latency_ms"`
	Allowlisted        bool             `json:"allowlisted"`
	Blocklisted        bool             `json:"blocklisted"`
	ScreenedAt         time.Time        `json:"screened_at"`
}

// Signals flattens all provider signals in provider order.
func (r ScreeningResult) Signals() []RiskSignal {
	var out []RiskSignal
	for _, pr := range r.ProviderResults {
		out = append(out, pr.Signals...)
	}
	return out
}

// TransactionScreening holds the independent sender and recipient screenings
// for one transfer plus the combined verdict (pairwise-worse under
// APPROVE < REVIEW < BLOCK).
type TransactionScreening struct {
	From     ScreeningResult `json:"from"`
	To       ScreeningResult `json:"to"`
	Decision Decision        `json:"decision"`
}
