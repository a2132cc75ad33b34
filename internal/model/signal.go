package model

import "time"

// RiskSignal is one finding about an address or entity, sourced from a
// provider or synthesized by the aggregator. Metadata is an opaque bag whose
// shape varies per source; the core never reads into it.
type RiskSignal struct {
	Provider    string         `json:"provider"`
	Category    string         `json:"category"`
	Severity    Severity       `json:"severity"`
	RiskScore   int            `json:"risk_score"`
	Actions     []string       `json:"actions,omitempty"`
	Description string         `json:"description"`
	EntityName  string         `json:"entity_name,omitempty"`
	EntityType  EntityType     `json:"entity_type,omitempty"`
	Direction   Direction      `json:"direction,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ProviderResult is one provider's outcome for one address. A provider that
// failed or timed out still yields a ProviderResult with Success=false;
// failure is a value, not an error past the aggregator boundary.
type ProviderResult struct {
	Provider   string       `json:"provider"`
	Matched    bool         `json:"matched"`
	Signals    []RiskSignal `json:"signals,omitempty"`
	Success    bool         `json:"success"`
	Error      string       `json:"error,omitempty"`
	LatencyMs  int64        `json:"latency_ms"`
	ScreenedAt time.Time    `json:"screened_at"`
}

// MaxSignalScore returns the highest risk score among the result's signals,
// 0 when there are none.
func (r ProviderResult) MaxSignalScore() int {
	max := 0
	for _, s := range r.Signals {
		if s.RiskScore > max {
			max = s.RiskScore
		}
	}
	return max
}
