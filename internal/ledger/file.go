package ledger

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// fileDoc is the YAML layout for a ledger fixture: records grouped per
// agent, with the agent ID supplied by the map key.
type fileDoc struct {
	Agents map[string]agentDoc `yaml:"agents"`
}

type agentDoc struct {
	Actions      []Action      `yaml:"actions"`
	Transactions []Transaction `yaml:"transactions"`
	Tasks        []Task        `yaml:"tasks"`
	Anomalies    []Anomaly     `yaml:"anomalies"`
}

// LoadFile reads a YAML ledger fixture from disk.
func LoadFile(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ledger: %s: %w", path, err)
	}
	return l, nil
}

// Parse builds a ledger from YAML fixture bytes. Agents are loaded in
// sorted order so the resulting record order is deterministic.
func Parse(data []byte) (*Ledger, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	ids := make([]string, 0, len(doc.Agents))
	for id := range doc.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	l := New()
	for _, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("agent with empty id")
		}
		docAgent := doc.Agents[id]
		for _, rec := range docAgent.Actions {
			rec.AgentID = id
			l.RecordAction(rec)
		}
		for _, rec := range docAgent.Transactions {
			rec.AgentID = id
			l.RecordTransaction(rec)
		}
		for _, rec := range docAgent.Tasks {
			if err := validTaskStatus(rec.Status); err != nil {
				return nil, fmt.Errorf("agent %s: %w", id, err)
			}
			rec.AgentID = id
			l.RecordTask(rec)
		}
		for _, rec := range docAgent.Anomalies {
			if err := validAnomalySeverity(rec.Severity); err != nil {
				return nil, fmt.Errorf("agent %s: %w", id, err)
			}
			rec.AgentID = id
			l.RecordAnomaly(rec)
		}
	}
	return l, nil
}

func validTaskStatus(status string) error {
	switch status {
	case TaskCompleted, TaskFailed, TaskPending:
		return nil
	default:
		return fmt.Errorf("unknown task status %q", status)
	}
}

func validAnomalySeverity(severity string) error {
	switch severity {
	case AnomalyLow, AnomalyMedium, AnomalyHigh, AnomalyCritical:
		return nil
	default:
		return fmt.Errorf("unknown anomaly severity %q", severity)
	}
}
