package screening

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerguard/ledgerguard/internal/metrics"
	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

// Source names for signals the aggregator fabricates itself. Provider
// names must not collide with these.
const (
	BlocklistSource  = "blocklist"
	DiagnosticSource = "aggregator"
)

// Aggregator composes the registered providers with the optional
// blocklist/allowlist layer and produces one unified verdict per
// address. The blocklist/allowlist checks are the only early exits;
// otherwise every provider is consulted and the full consensus is
// computed even when the first signal would already block.
type Aggregator struct {
	cfg       Config
	providers []Provider
	lists     *watchlist.Manager
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures optional aggregator collaborators.
type Option func(*Aggregator)

// WithWatchlist attaches the blocklist/allowlist layer consulted
// before any provider call.
func WithWatchlist(m *watchlist.Manager) Option {
	return func(a *Aggregator) { a.lists = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics attaches instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// New builds an aggregator over the given providers. Provider names
// must be unique and non-empty; they key the weight table and the
// health map.
func New(cfg Config, providers []Provider, opts ...Option) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("screening: provider at index %d is nil", i)
		}
		name := p.Name()
		if name == "" {
			return nil, fmt.Errorf("screening: provider at index %d has an empty name", i)
		}
		if name == BlocklistSource || name == DiagnosticSource {
			return nil, fmt.Errorf("screening: provider name %q is reserved", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("screening: duplicate provider name %q", name)
		}
		seen[name] = true
	}
	a := &Aggregator{
		cfg:       cfg,
		providers: append([]Provider(nil), providers...),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the aggregator's effective configuration.
func (a *Aggregator) Config() Config { return a.cfg }

// ProviderNames returns the registered provider names in registration
// order.
func (a *Aggregator) ProviderNames() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

// Initialize runs setup for every provider that needs it, such as
// loading a dataset file. It fails on the first error; a provider that
// cannot initialize is a deployment problem, not a screening-time
// condition.
func (a *Aggregator) Initialize(ctx context.Context) error {
	for _, p := range a.providers {
		init, ok := p.(Initializer)
		if !ok {
			continue
		}
		if err := init.Initialize(ctx); err != nil {
			return fmt.Errorf("screening: initialize provider %s: %w", p.Name(), err)
		}
	}
	return nil
}

// ScreenAddress produces the unified verdict for one address. It never
// returns an error: provider failures travel inside the result, and
// the minimum-success safety net downgrades unreliable verdicts to a
// review.
func (a *Aggregator) ScreenAddress(ctx context.Context, in Input) model.ScreeningResult {
	started := time.Now()
	res := model.ScreeningResult{
		RequestID:  uuid.NewString(),
		Address:    in.Address,
		Chain:      in.Chain,
		Decision:   model.Approve,
		Severity:   model.SeverityNone,
		ScreenedAt: a.now().UTC(),
	}

	var allowHit, blockHit bool
	var blockEntry watchlist.Entry
	if a.lists != nil {
		allowHit, _ = a.lists.IsAllowlisted(in.Address, in.Chain)
		blockHit, blockEntry = a.lists.IsBlocklisted(in.Address, in.Chain)
	}
	res.Allowlisted = allowHit
	res.Blocklisted = blockHit

	switch {
	case allowHit && a.cfg.AllowlistPriority:
		// Manual override channel: approve with no provider calls,
		// even when the address is also blocklisted.
		res.Decision = model.Approve
	case blockHit && (a.cfg.BlocklistPrecedence || !allowHit):
		a.applyBlocklistHit(&res, blockEntry, in.Direction)
	default:
		a.consult(ctx, in, &res)
	}

	res.TotalLatencyMs = time.Since(started).Milliseconds()
	a.metrics.IncDecision(string(res.Decision))
	a.logger.Info("address screened",
		"request_id", res.RequestID,
		"address", in.Address,
		"chain", in.Chain,
		"decision", res.Decision,
		"severity", res.Severity,
		"risk_score", res.RiskScore,
		"providers_succeeded", res.ProvidersSucceeded,
		"providers_consulted", res.ProvidersConsulted,
	)
	return res
}

// ScreenTransaction screens sender and recipient independently and
// combines them under the worse-decision ordering.
func (a *Aggregator) ScreenTransaction(ctx context.Context, from, to, amount, chain string) model.TransactionScreening {
	sender := a.ScreenAddress(ctx, Input{
		Address:   from,
		Chain:     chain,
		Direction: model.DirectionOutgoing,
		Amount:    amount,
	})
	recipient := a.ScreenAddress(ctx, Input{
		Address:   to,
		Chain:     chain,
		Direction: model.DirectionIncoming,
		Amount:    amount,
	})
	return model.TransactionScreening{
		From:     sender,
		To:       recipient,
		Decision: model.WorseDecision(sender.Decision, recipient.Decision),
	}
}

// HealthCheck polls every provider under the per-provider timeout and
// returns a name to health map. A probe that times out or panics maps
// to false.
func (a *Aggregator) HealthCheck(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(a.providers))
	var mu sync.Mutex
	var g errgroup.Group
	for _, p := range a.providers {
		p := p
		g.Go(func() error {
			healthy := a.probe(ctx, p)
			mu.Lock()
			out[p.Name()] = healthy
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// applyBlocklistHit turns a blocklist match into an immediate block
// with a single synthetic signal carrying the entry's reason.
func (a *Aggregator) applyBlocklistHit(res *model.ScreeningResult, entry watchlist.Entry, dir model.Direction) {
	desc := "address is blocklisted"
	if entry.Reason != "" {
		desc += ": " + entry.Reason
	}
	sig := model.RiskSignal{
		Provider:    BlocklistSource,
		Category:    model.CategoryInternal,
		Severity:    model.SeverityBlocklist,
		RiskScore:   100,
		Actions:     []string{model.ActionReject},
		Description: desc,
		Direction:   dir,
	}
	res.Decision = model.Block
	res.Severity = model.SeverityBlocklist
	res.RiskScore = 100
	res.Categories = []string{model.CategoryInternal}
	res.Actions = []string{model.ActionReject}
	res.ProviderResults = []model.ProviderResult{{
		Provider:   BlocklistSource,
		Matched:    true,
		Success:    true,
		Signals:    []model.RiskSignal{sig},
		ScreenedAt: res.ScreenedAt,
	}}
}

// consult fans the providers out, aggregates their signals, and applies
// the threshold decision plus the minimum-success safety net.
func (a *Aggregator) consult(ctx context.Context, in Input, res *model.ScreeningResult) {
	results := make([]model.ProviderResult, len(a.providers))
	if a.cfg.Parallel {
		var g errgroup.Group
		for i, p := range a.providers {
			i, p := i, p
			g.Go(func() error {
				results[i] = a.callProvider(ctx, p, in)
				return nil
			})
		}
		// Workers always return nil so a failing provider never
		// cancels its siblings.
		_ = g.Wait()
	} else {
		for i, p := range a.providers {
			results[i] = a.callProvider(ctx, p, in)
		}
	}

	res.ProviderResults = results
	res.ProvidersConsulted = len(results)

	var weighted, weightSum float64
	categories := make(map[string]struct{})
	actions := make(map[string]struct{})
	severity := model.SeverityNone
	succeeded := 0
	for _, pr := range results {
		if pr.Success {
			succeeded++
			w := a.cfg.WeightFor(pr.Provider)
			weighted += float64(pr.MaxSignalScore()) * w
			weightSum += w
		}
		for _, sig := range pr.Signals {
			severity = model.MaxSeverity(severity, sig.Severity)
			if sig.Category != "" {
				categories[sig.Category] = struct{}{}
			}
			for _, act := range sig.Actions {
				actions[act] = struct{}{}
			}
		}
	}
	res.ProvidersSucceeded = succeeded

	// Failed providers contribute to neither numerator nor
	// denominator; they are not scored as zero.
	if weightSum > 0 {
		res.RiskScore = int(math.Round(weighted / weightSum))
	}

	switch {
	case res.RiskScore >= a.cfg.BlockThreshold:
		res.Decision = model.Block
	case res.RiskScore >= a.cfg.ReviewThreshold:
		res.Decision = model.Review
	default:
		res.Decision = model.Approve
	}

	if succeeded < a.cfg.MinProviderSuccess {
		// Too few providers answered to trust any verdict, including a
		// block. Force a review and say why.
		res.Decision = model.Review
		severity = model.MaxSeverity(severity, model.SeverityMedium)
		diag := model.RiskSignal{
			Provider: DiagnosticSource,
			Category: model.CategoryInternal,
			Severity: model.SeverityMedium,
			Actions:  []string{model.ActionManualReview},
			Description: fmt.Sprintf("only %d of %d providers succeeded (minimum %d)",
				succeeded, len(results), a.cfg.MinProviderSuccess),
		}
		res.ProviderResults = append(res.ProviderResults, model.ProviderResult{
			Provider:   DiagnosticSource,
			Success:    true,
			Signals:    []model.RiskSignal{diag},
			ScreenedAt: res.ScreenedAt,
		})
		categories[model.CategoryInternal] = struct{}{}
		actions[model.ActionManualReview] = struct{}{}
		a.metrics.IncForcedReview()
		a.logger.Warn("forcing review on provider shortfall",
			"request_id", res.RequestID,
			"succeeded", succeeded,
			"minimum", a.cfg.MinProviderSuccess,
		)
	}

	res.Severity = severity
	res.Categories = sortedSet(categories)
	res.Actions = sortedSet(actions)
}

// callProvider runs one provider under its own deadline. A timeout,
// error, or panic becomes a success=false result carrying the message;
// sibling calls are unaffected.
func (a *Aggregator) callProvider(ctx context.Context, p Provider, in Input) model.ProviderResult {
	name := p.Name()
	started := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout())
	defer cancel()

	type outcome struct {
		res model.ProviderResult
		err error
	}
	// Buffered so an abandoned call can still deliver and let its
	// goroutine exit.
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		res, err := p.ScreenAddress(callCtx, in)
		ch <- outcome{res: res, err: err}
	}()

	var res model.ProviderResult
	select {
	case out := <-ch:
		if out.err != nil {
			res = model.ProviderResult{Error: out.err.Error()}
			a.metrics.IncProviderFailure(name)
			a.logger.Warn("provider screening failed", "provider", name, "error", out.err)
		} else {
			res = out.res
			res.Success = true
			res.Error = ""
		}
	case <-callCtx.Done():
		res = model.ProviderResult{Error: "screening aborted: " + callCtx.Err().Error()}
		a.metrics.IncProviderFailure(name)
		a.logger.Warn("provider screening timed out",
			"provider", name, "timeout", a.cfg.ProviderTimeout())
	}

	elapsed := time.Since(started)
	res.Provider = name
	res.LatencyMs = elapsed.Milliseconds()
	res.ScreenedAt = a.now().UTC()
	a.metrics.ObserveProviderLatency(name, elapsed)
	return res
}

func (a *Aggregator) probe(ctx context.Context, p Provider) bool {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout())
	defer cancel()
	ch := make(chan bool, 1)
	go func() {
		defer func() {
			if recover() != nil {
				ch <- false
			}
		}()
		ch <- p.Healthy(callCtx)
	}()
	select {
	case ok := <-ch:
		return ok
	case <-callCtx.Done():
		return false
	}
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
