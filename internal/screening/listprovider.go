package screening

import (
	"context"

	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

// WatchlistProvider adapts a watchlist.Manager to the Provider
// interface, for deployments that want list hits weighed alongside
// vendor signals instead of (or in addition to) the aggregator's fast
// paths.
type WatchlistProvider struct {
	name  string
	lists *watchlist.Manager
}

// NewWatchlistProvider wraps the given manager as a provider.
func NewWatchlistProvider(name string, lists *watchlist.Manager) (*WatchlistProvider, error) {
	if lists == nil {
		return nil, errNilWatchlist
	}
	if name == "" {
		name = "watchlist"
	}
	return &WatchlistProvider{name: name, lists: lists}, nil
}

// Name implements Provider.
func (p *WatchlistProvider) Name() string { return p.name }

// Healthy implements Provider.
func (p *WatchlistProvider) Healthy(_ context.Context) bool { return true }

// ScreenAddress implements Provider. A blocklist hit produces a single
// BLOCKLIST-severity signal; an allowlist hit produces no signals and
// no match.
func (p *WatchlistProvider) ScreenAddress(_ context.Context, in Input) (model.ProviderResult, error) {
	if hit, entry := p.lists.IsBlocklisted(in.Address, in.Chain); hit {
		desc := "address is blocklisted"
		if entry.Reason != "" {
			desc = "address is blocklisted: " + entry.Reason
		}
		return model.ProviderResult{
			Matched: true,
			Signals: []model.RiskSignal{{
				Provider:    p.name,
				Category:    model.CategoryInternal,
				Severity:    model.SeverityBlocklist,
				RiskScore:   100,
				Actions:     []string{model.ActionReject},
				Description: desc,
				Direction:   in.Direction,
			}},
		}, nil
	}
	return model.ProviderResult{}, nil
}
