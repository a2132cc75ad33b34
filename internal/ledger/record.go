package ledger

import "time"

// Task statuses. Completed tasks are the "confirmed" population for
// compliance scoring.
const (
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskPending   = "pending"
)

// Anomaly severities. These are operational severities recorded against
// an agent, a separate scale from screening signal severities.
const (
	AnomalyLow      = "low"
	AnomalyMedium   = "medium"
	AnomalyHigh     = "high"
	AnomalyCritical = "critical"
)

// Action is one recorded agent action.
type Action struct {
	ID        string    `json:"id" yaml:"id"`
	AgentID   string    `json:"agent_id" yaml:"agent_id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Status    string    `json:"status,omitempty" yaml:"status,omitempty"`
	Timestamp time.Time `json:"ts" yaml:"ts"`
}

// Transaction is one recorded transfer. Amount stays a string until
// scoring time; an unparsable amount degrades the affected factor
// instead of failing the evaluation.
type Transaction struct {
	ID          string    `json:"id" yaml:"id"`
	AgentID     string    `json:"agent_id" yaml:"agent_id"`
	Amount      string    `json:"amount" yaml:"amount"`
	Currency    string    `json:"currency,omitempty" yaml:"currency,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string    `json:"destination" yaml:"destination"`
	Chain       string    `json:"chain,omitempty" yaml:"chain,omitempty"`
	Timestamp   time.Time `json:"ts" yaml:"ts"`
}

// Task is one recorded unit of agent work.
type Task struct {
	ID        string    `json:"id" yaml:"id"`
	AgentID   string    `json:"agent_id" yaml:"agent_id"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Status    string    `json:"status" yaml:"status"`
	Evidence  []string  `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	Timestamp time.Time `json:"ts" yaml:"ts"`
}

// Anomaly is one recorded irregularity attributed to an agent.
type Anomaly struct {
	ID          string    `json:"id" yaml:"id"`
	AgentID     string    `json:"agent_id" yaml:"agent_id"`
	Severity    string    `json:"severity" yaml:"severity"`
	Kind        string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Timestamp   time.Time `json:"ts" yaml:"ts"`
}

// HasEvidence reports whether the task carries at least one evidence
// reference.
func (t Task) HasEvidence() bool {
	return len(t.Evidence) > 0
}
