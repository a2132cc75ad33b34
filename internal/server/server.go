package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ledgerguard/ledgerguard/internal/config"
	"github.com/ledgerguard/ledgerguard/internal/engine"
	"github.com/ledgerguard/ledgerguard/internal/metrics"
	"github.com/ledgerguard/ledgerguard/internal/persist"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

// Server is the HTTP control plane. Screening configuration, providers,
// and watchlists are hot-reloadable: Reload builds a fresh engine that
// shares the running ledger and digest chain, then swaps it in under
// the lock. Handlers take the engine pointer under a read lock, so
// in-flight requests finish on the engine they started with.
type Server struct {
	mu      sync.RWMutex
	eng     *engine.Engine
	lists   *watchlist.Manager
	cfg     config.Config
	cfgHash string

	cfgPath  string
	store    persist.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	httpSrv  *http.Server
	started  time.Time
}

// New assembles a server from loaded configuration. cfgPath is the file
// the configuration came from, used by Reload; it may be empty when
// running on defaults.
func New(cfg config.Config, cfgHash, cfgPath string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	lists, err := cfg.BuildWatchlist()
	if err != nil {
		return nil, err
	}
	agg, err := cfg.BuildAggregator(lists, m, logger)
	if err != nil {
		return nil, err
	}
	store, err := cfg.BuildStore()
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(agg,
		engine.WithStore(store),
		engine.WithWatchlist(lists),
		engine.WithAlerts(cfg.BuildAlerts()),
		engine.WithLogger(logger),
		engine.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	s := &Server{
		eng:      eng,
		lists:    lists,
		cfg:      cfg,
		cfgHash:  cfgHash,
		cfgPath:  cfgPath,
		store:    store,
		logger:   logger,
		metrics:  m,
		registry: registry,
		started:  time.Now(),
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}
	return s, nil
}

// Start initializes providers and restores the chain checkpoint, then
// begins serving. It blocks until the listener fails or Shutdown runs.
func (s *Server) Start(ctx context.Context) error {
	eng := s.engine()
	if err := eng.Screening.Initialize(ctx); err != nil {
		return err
	}
	if err := eng.Restore(ctx); err != nil {
		return err
	}
	s.logger.Info("server listening",
		"addr", s.cfg.Server.Addr,
		"providers", eng.Screening.ProviderNames(),
		"chain_length", eng.Chain.Len())
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Shutdown checkpoints the chain and stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	grace := time.Duration(s.cfg.Server.ShutdownGraceSec) * time.Second
	if grace > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, grace)
		defer cancel()
	}
	if err := s.engine().Checkpoint(ctx); err != nil {
		s.logger.Error("shutdown checkpoint failed", "error", err)
	}
	err := s.httpSrv.Shutdown(ctx)
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Reload re-reads the configuration file and swaps in a rebuilt engine
// sharing the running ledger and chain. Only screening configuration,
// providers, watchlists, and alert targets take effect; server address
// and persistence changes need a restart.
func (s *Server) Reload(ctx context.Context) error {
	cfg, hash, err := config.LoadWithHash(s.cfgPath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	s.mu.RLock()
	// A watchlist file can change without the config file changing, so
	// the hash short-circuit only applies when no list file is set.
	unchanged := hash == s.cfgHash && s.cfg.Lists.Path == "" && cfg.Lists.Path == ""
	prev := s.eng
	s.mu.RUnlock()
	if unchanged {
		return nil
	}

	lists, err := cfg.BuildWatchlist()
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	agg, err := cfg.BuildAggregator(lists, s.metrics, s.logger)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := agg.Initialize(ctx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	eng, err := engine.New(agg,
		engine.WithLedger(prev.Ledger),
		engine.WithChain(prev.Chain),
		engine.WithStore(s.store),
		engine.WithWatchlist(lists),
		engine.WithAlerts(cfg.BuildAlerts()),
		engine.WithLogger(s.logger),
		engine.WithMetrics(s.metrics),
	)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	s.mu.Lock()
	s.eng = eng
	s.lists = lists
	s.cfg.Screening = cfg.Screening
	s.cfg.Providers = cfg.Providers
	s.cfg.Lists = cfg.Lists
	s.cfg.Alerts = cfg.Alerts
	s.cfgHash = hash
	s.mu.Unlock()

	s.logger.Info("configuration reloaded",
		"hash", hash,
		"providers", agg.ProviderNames())
	return nil
}

// engine returns the current engine under the read lock.
func (s *Server) engine() *engine.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eng
}

// watchlists returns the current list manager under the read lock.
func (s *Server) watchlists() *watchlist.Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lists
}
