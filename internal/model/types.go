package model

// Severity classifies how bad a risk signal is. The order is total:
// NONE < LOW < MEDIUM < HIGH < SEVERE < BLOCKLIST.
type Severity string

const (
	SeverityNone      Severity = "none"
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeveritySevere    Severity = "severe"
	SeverityBlocklist Severity = "blocklist"
)

// severityRank maps severities to comparable integers for "worst wins" logic.
var severityRank = map[Severity]int{
	SeverityNone:      0,
	SeverityLow:       1,
	SeverityMedium:    2,
	SeverityHigh:      3,
	SeveritySevere:    4,
	SeverityBlocklist: 5,
}

// Rank returns the position of s in the severity order. Unknown values rank
// below NONE so a malformed provider payload can never escalate a result.
func (s Severity) Rank() int {
	r, ok := severityRank[s]
	if !ok {
		return -1
	}
	return r
}

// MaxSeverity returns the worse of a and b under the severity order.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Decision is the screening verdict. The order is total:
// APPROVE < REVIEW < BLOCK.
type Decision string

const (
	Approve Decision = "approve"
	Review  Decision = "review"
	Block   Decision = "block"
)

var decisionRank = map[Decision]int{
	Approve: 0,
	Review:  1,
	Block:   2,
}

// Rank returns the position of d in the decision order, -1 for unknown values.
func (d Decision) Rank() int {
	r, ok := decisionRank[d]
	if !ok {
		return -1
	}
	return r
}

// WorseDecision returns the stricter of a and b.
func WorseDecision(a, b Decision) Decision {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseDecision maps a string to a Decision, defaulting to Review so an
// unrecognized configured verdict fails toward human attention, not approval.
func ParseDecision(s string) Decision {
	switch Decision(s) {
	case Approve, Review, Block:
		return Decision(s)
	default:
		return Review
	}
}

// Direction indicates which side of a transfer an entity sits on.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionBoth     Direction = "both"
)

// EntityType classifies a screened counterparty when a provider knows it.
type EntityType string

const (
	EntityIndividual   EntityType = "individual"
	EntityOrganization EntityType = "organization"
	EntityContract     EntityType = "contract"
)

// Well-known signal categories. Providers are free to emit others; these are
// the ones the built-in providers and tests use.
const (
	CategorySanctions  = "sanctions"
	CategoryDarknet    = "darknet"
	CategoryMixer      = "mixer"
	CategoryScam       = "scam"
	CategoryStructural = "structural"
	CategoryInternal   = "internal"
)

// Recommended actions carried on signals.
const (
	ActionReject       = "reject"
	ActionManualReview = "manual_review"
	ActionFileReport   = "file_report"
	ActionMonitor      = "monitor"
)
