package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ledgerguard/ledgerguard/internal/config"
	"github.com/ledgerguard/ledgerguard/internal/screening"
)

// quietLogger discards log output. One-shot commands print results, not logs.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadAggregator builds an initialized screening aggregator from the config
// file named by --config, falling back to defaults when the file is absent.
func loadAggregator(ctx context.Context) (*screening.Aggregator, config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}
	lists, err := cfg.BuildWatchlist()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load watchlist: %w", err)
	}
	agg, err := cfg.BuildAggregator(lists, nil, quietLogger())
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("build aggregator: %w", err)
	}
	if err := agg.Initialize(ctx); err != nil {
		return nil, config.Config{}, fmt.Errorf("initialize providers: %w", err)
	}
	return agg, cfg, nil
}
