package alert

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["block", "review", "forced_review"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"` // "screening", "transaction", "risk"
	Address   string `json:"address,omitempty"`
	Chain     string `json:"chain,omitempty"`
	AgentID   string `json:"agent_id,omitempty"`
	Decision  string `json:"decision"`
	Severity  string `json:"severity,omitempty"`
	RiskScore int    `json:"risk_score"`
	Reason    string `json:"reason"`
	Type      string `json:"type,omitempty"` // "forced_review" etc.
}
