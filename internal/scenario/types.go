package scenario

// Case is one screening expectation. Exactly one target must be set:
// an address, a from/to transfer pair, or an agent with a candidate
// amount and destination for a risk-only evaluation.
type Case struct {
	Address   string `yaml:"address,omitempty"`
	Direction string `yaml:"direction,omitempty"`

	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	Agent       string `yaml:"agent,omitempty"`
	Destination string `yaml:"destination,omitempty"`

	Chain  string `yaml:"chain,omitempty"`
	Amount string `yaml:"amount,omitempty"`

	Expect string `yaml:"expect"`
	Note   string `yaml:"note,omitempty"`
}

// Scenario is a named collection of screening test cases. Chain, when
// set, is the default for cases that do not name one.
type Scenario struct {
	Name  string `yaml:"name"`
	Chain string `yaml:"chain,omitempty"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Reason   string `json:"reason"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
