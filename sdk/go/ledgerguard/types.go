package ledgerguard

import (
	"fmt"
	"time"
)

// Decision is the screening outcome for an address or transaction.
type Decision string

const (
	Approve Decision = "approve"
	Review  Decision = "review"
	Block   Decision = "block"
)

// Rank orders decisions by strictness: approve < review < block.
func (d Decision) Rank() int {
	switch d {
	case Review:
		return 1
	case Block:
		return 2
	default:
		return 0
	}
}

// Severity grades a risk signal.
type Severity string

const (
	SeverityNone      Severity = "none"
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeveritySevere    Severity = "severe"
	SeverityBlocklist Severity = "blocklist"
)

// Rank orders severities from none (0) to blocklist (5).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeveritySevere:
		return 4
	case SeverityBlocklist:
		return 5
	default:
		return 0
	}
}

// Signal is one finding about an address, reported by a provider or
// synthesized by the service.
type Signal struct {
	Provider    string         `json:"provider"`
	Category    string         `json:"category"`
	Severity    Severity       `json:"severity"`
	RiskScore   int            `json:"risk_score"`
	Actions     []string       `json:"actions,omitempty"`
	Description string         `json:"description"`
	EntityName  string         `json:"entity_name,omitempty"`
	EntityType  string         `json:"entity_type,omitempty"`
	Direction   string         `json:"direction,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ProviderResult is one provider's outcome for one screening. A provider
// that failed still yields a result with Success false.
type ProviderResult struct {
	Provider   string    `json:"provider"`
	Matched    bool      `json:"matched"`
	Signals    []Signal  `json:"signals,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	ScreenedAt time.Time `json:"screened_at"`
}

// Screening is the aggregated verdict for one address.
type Screening struct {
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

// TransactionScreening pairs the verdicts for both sides of a transfer.
type TransactionScreening struct {
	From     Screening `json:"from"`
	To       Screening `json:"to"`
	Decision Decision  `json:"decision"`
}

// RiskFactor is one component of a transaction risk evaluation.
type RiskFactor struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Risk is the service's risk evaluation of one candidate transfer.
type Risk struct {
	AgentID        string       `json:"agent_id"`
	Amount         string       `json:"amount"`
	Destination    string       `json:"destination"`
	Score          int          `json:"score"`
	Flagged        bool         `json:"flagged"`
	Recommendation Decision     `json:"recommendation"`
	Factors        []RiskFactor `json:"factors"`
	EvaluatedAt    time.Time    `json:"evaluated_at"`
}

// Factor is one weighted component of an agent trust score.
type Factor struct {
	Name        string  `json:"name"`
	Score       int     `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// TrustScore is a point-in-time trust assessment of one agent.
type TrustScore struct {
	AgentID    string    `json:"agent_id"`
	Score      int       `json:"score"`
	Level      string    `json:"level"`
	Factors    []Factor  `json:"factors"`
	ComputedAt time.Time `json:"computed_at"`
}

// Transaction is the ledger record the service stored for an approved
// transfer.
type Transaction struct {
	ID          string    `json:"id"`
	AgentID     string    `json:"agent_id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency,omitempty"`
	Source      string    `json:"source,omitempty"`
	Destination string    `json:"destination"`
	Chain       string    `json:"chain,omitempty"`
	Timestamp   time.Time `json:"ts"`
}

// Verdict is the combined outcome of verifying one transfer: risk
// evaluation, screening of both sides, and the final decision.
type Verdict struct {
	Transaction Transaction          `json:"transaction"`
	Risk        Risk                 `json:"risk"`
	Screening   TransactionScreening `json:"screening"`
	Decision    Decision             `json:"decision"`
	Flagged     bool                 `json:"flagged"`
	Recorded    bool                 `json:"recorded"`
	ChainIndex  int                  `json:"chain_index"`
}

// Approved reports whether the verdict permits the transfer.
func (v Verdict) Approved() bool {
	return v.Decision == Approve
}

// BlockedError is returned by a guarded transfer func when the service
// refuses the transfer. Transport failures are plain errors, never this.
type BlockedError struct {
	Transfer  Transfer
	Decision  Decision
	RiskScore int
	Reason    string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("ledgerguard blocked (%s): %s", e.Decision, e.Reason)
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledgerguard: api error %d: %s", e.Status, e.Message)
}
