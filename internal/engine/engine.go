package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/alert"
	"github.com/ledgerguard/ledgerguard/internal/digest"
	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/metrics"
	"github.com/ledgerguard/ledgerguard/internal/persist"
	"github.com/ledgerguard/ledgerguard/internal/screening"
	"github.com/ledgerguard/ledgerguard/internal/trust"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

// Engine composes the ledger, digest chain, scorer, and screening
// aggregator into one decision pipeline. Verdict-producing operations
// append to the digest chain so the full decision history stays
// tamper-evident.
//
// The exported collaborators may be used directly for reads; mutations
// go through the engine so chain, metrics, and alerts stay consistent.
type Engine struct {
	Ledger    *ledger.Ledger
	Chain     *digest.Chain
	Scorer    *trust.Scorer
	Screening *screening.Aggregator

	store     persist.Store
	lists     *watchlist.Manager
	alerts    *alert.Dispatcher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	chainName string
	now       func() time.Time
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithLedger replaces the engine's empty ledger, for preloaded history.
func WithLedger(l *ledger.Ledger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Ledger = l
		}
	}
}

// WithChain replaces the engine's empty chain. Reloads use it to carry
// the running chain into a rebuilt engine.
func WithChain(c *digest.Chain) Option {
	return func(e *Engine) {
		if c != nil {
			e.Chain = c
		}
	}
}

// WithStore attaches persistence for chain checkpoints, list
// snapshots, and screening history.
func WithStore(s persist.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithWatchlist lets Checkpoint snapshot the runtime lists alongside
// the chain. Without it, list changes made over the API die with the
// process.
func WithWatchlist(m *watchlist.Manager) Option {
	return func(e *Engine) { e.lists = m }
}

// WithAlerts attaches the webhook dispatcher.
func WithAlerts(d *alert.Dispatcher) Option {
	return func(e *Engine) { e.alerts = d }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics attaches instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithChainName sets the checkpoint key suffix, for running several
// engines against one store. Defaults to "main".
func WithChainName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.chainName = name
		}
	}
}

// New builds an engine around the given aggregator. The ledger, chain,
// and scorer are created fresh unless options replace them.
func New(agg *screening.Aggregator, opts ...Option) (*Engine, error) {
	if agg == nil {
		return nil, errors.New("engine: screening aggregator is required")
	}
	e := &Engine{
		Ledger:    ledger.New(),
		Chain:     digest.New(),
		Screening: agg,
		logger:    slog.Default(),
		chainName: "main",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	scorer, err := trust.NewScorer(e.Ledger)
	if err != nil {
		return nil, err
	}
	e.Scorer = scorer
	return e, nil
}

func (e *Engine) chainKey() string {
	return "chain-" + e.chainName
}

func (e *Engine) listsKey() string {
	return "lists-" + e.chainName
}
