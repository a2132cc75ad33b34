package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/alert"
	"github.com/ledgerguard/ledgerguard/internal/metrics"
	"github.com/ledgerguard/ledgerguard/internal/persist"
	"github.com/ledgerguard/ledgerguard/internal/ratelimit"
	"github.com/ledgerguard/ledgerguard/internal/screening"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

// BuildWatchlist loads the configured watchlist file, or returns empty
// lists when no path is set.
func (c Config) BuildWatchlist() (*watchlist.Manager, error) {
	if c.Lists.Path == "" {
		return watchlist.New(), nil
	}
	m, err := watchlist.Load(c.Lists.Path)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	return m, nil
}

// BuildProviders constructs the enabled screening providers in a stable
// order: dataset, heuristic, then remotes as configured.
func (c Config) BuildProviders() ([]screening.Provider, error) {
	var providers []screening.Provider
	ttl := c.Screening.CacheTTL()

	if d := c.Providers.Dataset; d.Enabled {
		var (
			p   screening.Provider
			err error
		)
		if d.Path != "" {
			p, err = screening.NewDatasetFileProvider(d.Name, d.Path, ttl)
		} else {
			p, err = screening.NewDatasetProvider(d.Name, screening.DefaultDataset, ttl)
		}
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if h := c.Providers.Heuristic; h.Enabled {
		providers = append(providers, screening.NewHeuristicProvider(h.Name))
	}

	for _, r := range c.Providers.Remote {
		var apiKey string
		if r.APIKeyEnv != "" {
			apiKey = os.Getenv(r.APIKeyEnv)
		}
		p, err := screening.NewRemoteProvider(r.Name, r.URL, apiKey, ttl)
		if err != nil {
			return nil, err
		}
		if r.MaxRequests > 0 {
			windowSec := r.WindowSec
			if windowSec <= 0 {
				windowSec = 60
			}
			p.SetRateLimit(ratelimit.Limit{
				MaxRequests: r.MaxRequests,
				Window:      time.Duration(windowSec) * time.Second,
			})
		}
		providers = append(providers, p)
	}

	return providers, nil
}

// BuildAggregator assembles the aggregator from the configured
// providers and lists.
func (c Config) BuildAggregator(lists *watchlist.Manager, m *metrics.Metrics, logger *slog.Logger) (*screening.Aggregator, error) {
	providers, err := c.BuildProviders()
	if err != nil {
		return nil, err
	}
	opts := []screening.Option{}
	if lists != nil {
		opts = append(opts, screening.WithWatchlist(lists))
	}
	if m != nil {
		opts = append(opts, screening.WithMetrics(m))
	}
	if logger != nil {
		opts = append(opts, screening.WithLogger(logger))
	}
	return screening.New(c.Screening, providers, opts...)
}

// BuildStore opens the configured persistence store, or returns nil
// when persistence is disabled.
func (c Config) BuildStore() (persist.Store, error) {
	if c.Persistence.SQLitePath == "" {
		return nil, nil
	}
	return persist.OpenSQLite(c.Persistence.SQLitePath)
}

// BuildAlerts constructs the webhook dispatcher, nil when no alerts
// are configured.
func (c Config) BuildAlerts() *alert.Dispatcher {
	return alert.NewDispatcher(c.Alerts)
}
