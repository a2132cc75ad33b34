package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is a thread-safe, append-only in-memory store of agent history.
// Records are kept in insertion order; all query methods return fresh
// slices in that order. A single RWMutex guards all four record kinds.
type Ledger struct {
	mu           sync.RWMutex
	actions      []Action
	transactions []Transaction
	tasks        []Task
	anomalies    []Anomaly
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// RecordAction appends an action, filling in empty ID and Timestamp
// fields, and returns the stored record.
func (l *Ledger) RecordAction(a Action) Action {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	l.actions = append(l.actions, a)
	return a
}

// RecordTransaction appends a transaction, filling in empty ID and
// Timestamp fields, and returns the stored record.
func (l *Ledger) RecordTransaction(tx Transaction) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	l.transactions = append(l.transactions, tx)
	return tx
}

// RecordTask appends a task, filling in empty ID and Timestamp fields,
// and returns the stored record.
func (l *Ledger) RecordTask(t Task) Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	l.tasks = append(l.tasks, t)
	return t
}

// RecordAnomaly appends an anomaly, filling in empty ID and Timestamp
// fields, and returns the stored record.
func (l *Ledger) RecordAnomaly(a Anomaly) Anomaly {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	l.anomalies = append(l.anomalies, a)
	return a
}

// ActionsByAgent returns all actions recorded for the agent, in order.
func (l *Ledger) ActionsByAgent(agentID string) []Action {
	return l.QueryActions(func(a Action) bool { return a.AgentID == agentID })
}

// TransactionsByAgent returns all transactions recorded for the agent,
// in order.
func (l *Ledger) TransactionsByAgent(agentID string) []Transaction {
	return l.QueryTransactions(func(tx Transaction) bool { return tx.AgentID == agentID })
}

// TasksByAgent returns all tasks recorded for the agent, in order.
func (l *Ledger) TasksByAgent(agentID string) []Task {
	return l.QueryTasks(func(t Task) bool { return t.AgentID == agentID })
}

// AnomaliesByAgent returns all anomalies recorded for the agent, in order.
func (l *Ledger) AnomaliesByAgent(agentID string) []Anomaly {
	return l.QueryAnomalies(func(a Anomaly) bool { return a.AgentID == agentID })
}

// QueryActions returns the actions matching keep, in insertion order.
func (l *Ledger) QueryActions(keep func(Action) bool) []Action {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Action
	for _, a := range l.actions {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// QueryTransactions returns the transactions matching keep, in
// insertion order.
func (l *Ledger) QueryTransactions(keep func(Transaction) bool) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Transaction
	for _, tx := range l.transactions {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// QueryTasks returns the tasks matching keep, in insertion order.
func (l *Ledger) QueryTasks(keep func(Task) bool) []Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Task
	for _, t := range l.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// QueryAnomalies returns the anomalies matching keep, in insertion order.
func (l *Ledger) QueryAnomalies(keep func(Anomaly) bool) []Anomaly {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Anomaly
	for _, a := range l.anomalies {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Counts summarizes how many records of each kind the ledger holds.
type Counts struct {
	Actions      int `json:"actions"`
	Transactions int `json:"transactions"`
	Tasks        int `json:"tasks"`
	Anomalies    int `json:"anomalies"`
}

// Size returns record counts for all four kinds.
func (l *Ledger) Size() Counts {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Counts{
		Actions:      len(l.actions),
		Transactions: len(l.transactions),
		Tasks:        len(l.tasks),
		Anomalies:    len(l.anomalies),
	}
}

// AgentIDs returns the distinct agents present in any record kind, in
// first-seen order.
func (l *Ledger) AgentIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, a := range l.actions {
		add(a.AgentID)
	}
	for _, tx := range l.transactions {
		add(tx.AgentID)
	}
	for _, t := range l.tasks {
		add(t.AgentID)
	}
	for _, a := range l.anomalies {
		add(a.AgentID)
	}
	return out
}
