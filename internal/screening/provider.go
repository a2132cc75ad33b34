package screening

import (
	"context"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

// Input identifies one address to screen.
type Input struct {
	Address   string          `json:"address"`
	Chain     string          `json:"chain,omitempty"`
	Direction model.Direction `json:"direction,omitempty"`
	Amount    string          `json:"amount,omitempty"`
}

// Provider is one pluggable screening source. Implementations fill
// Matched and Signals; the aggregator stamps Provider, Success, latency,
// and timing onto the result. A provider reports data problems through
// the returned error, which the aggregator converts into a
// success=false result rather than propagating.
//
// Each provider owns its own cache; providers never share state with
// the aggregator or each other.
type Provider interface {
	Name() string
	ScreenAddress(ctx context.Context, in Input) (model.ProviderResult, error)
	Healthy(ctx context.Context) bool
}

// Initializer is implemented by providers that need setup before first
// use, such as loading a dataset or opening a session.
type Initializer interface {
	Initialize(ctx context.Context) error
}
