package trust

import (
	"time"

	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/model"
)

// Store is the read-only view of agent history the scorer consumes.
// *ledger.Ledger satisfies it; scoring never writes back.
type Store interface {
	ActionsByAgent(agentID string) []ledger.Action
	TransactionsByAgent(agentID string) []ledger.Transaction
	QueryTasks(keep func(ledger.Task) bool) []ledger.Task
	QueryAnomalies(keep func(ledger.Anomaly) bool) []ledger.Anomaly
	QueryTransactions(keep func(ledger.Transaction) bool) []ledger.Transaction
}

// Trust levels derived from the overall score.
const (
	LevelUntrusted = "untrusted"
	LevelLow       = "low"
	LevelMedium    = "medium"
	LevelHigh      = "high"
	LevelVerified  = "verified"
)

// LevelFor maps an overall trust score to its level.
func LevelFor(score int) string {
	switch {
	case score >= 90:
		return LevelVerified
	case score >= 70:
		return LevelHigh
	case score >= 50:
		return LevelMedium
	case score >= 30:
		return LevelLow
	default:
		return LevelUntrusted
	}
}

// Factor is one weighted component of an agent trust score. Factors are
// recomputed from store contents on every call and never persisted.
type Factor struct {
	Name        string  `json:"name"`
	Score       int     `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Score is a point-in-time trust assessment of one agent.
type Score struct {
	AgentID    string    `json:"agent_id"`
	Score      int       `json:"score"`
	Level      string    `json:"level"`
	Factors    []Factor  `json:"factors"`
	ComputedAt time.Time `json:"computed_at"`
}

// RiskFactor is one unweighted component of a transaction risk
// evaluation. The five factors are combined by simple average.
type RiskFactor struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// RiskEvaluation is the scorer's verdict on one candidate transaction.
// Flagged (>=60) and Recommendation (block >=80, review >=50) use
// different breakpoints on purpose.
type RiskEvaluation struct {
	AgentID        string         `json:"agent_id"`
	Amount         string         `json:"amount"`
	Destination    string         `json:"destination"`
	Score          int            `json:"score"`
	Flagged        bool           `json:"flagged"`
	Recommendation model.Decision `json:"recommendation"`
	Factors        []RiskFactor   `json:"factors"`
	EvaluatedAt    time.Time      `json:"evaluated_at"`
}
