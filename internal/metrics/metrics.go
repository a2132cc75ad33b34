package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for screening, scoring, and the digest
// chain. All methods are safe on a nil receiver so call sites do not
// need to guard.
type Metrics struct {
	// Screening outcomes by decision.
	ScreeningDecisions *prometheus.CounterVec

	// Per-provider screening latency.
	ProviderLatency *prometheus.HistogramVec

	// Per-provider failures (timeouts and errors).
	ProviderFailures *prometheus.CounterVec

	// Reviews forced by the provider-success safety net.
	ForcedReviews prometheus.Counter

	// Transaction risk evaluations by recommendation.
	RiskEvaluations *prometheus.CounterVec

	// Current digest chain length.
	ChainLength prometheus.Gauge

	// Total chain appends.
	ChainAppends prometheus.Counter
}

// New registers all collectors with reg and returns the set. Tests pass
// a fresh prometheus.NewRegistry; the server passes the default one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScreeningDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerguard_screening_decisions_total",
			Help: "Screening decisions by outcome",
		}, []string{"decision"}),

		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledgerguard_provider_duration_seconds",
			Help:    "Duration of provider screening calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),

		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerguard_provider_failures_total",
			Help: "Provider screening failures, timeouts included",
		}, []string{"provider"}),

		ForcedReviews: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerguard_forced_reviews_total",
			Help: "Screenings forced to review by the provider-success safety net",
		}),

		RiskEvaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerguard_risk_evaluations_total",
			Help: "Transaction risk evaluations by recommendation",
		}, []string{"recommendation"}),

		ChainLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerguard_chain_length",
			Help: "Current digest chain length",
		}),

		ChainAppends: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerguard_chain_appends_total",
			Help: "Total digest chain appends",
		}),
	}
}

// IncDecision records one screening outcome.
func (m *Metrics) IncDecision(decision string) {
	if m != nil {
		m.ScreeningDecisions.WithLabelValues(decision).Inc()
	}
}

// ObserveProviderLatency records the duration of one provider call.
func (m *Metrics) ObserveProviderLatency(provider string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// IncProviderFailure records one provider failure.
func (m *Metrics) IncProviderFailure(provider string) {
	if m != nil {
		m.ProviderFailures.WithLabelValues(provider).Inc()
	}
}

// IncForcedReview records one safety-net review.
func (m *Metrics) IncForcedReview() {
	if m != nil {
		m.ForcedReviews.Inc()
	}
}

// IncRiskEvaluation records one risk evaluation outcome.
func (m *Metrics) IncRiskEvaluation(recommendation string) {
	if m != nil {
		m.RiskEvaluations.WithLabelValues(recommendation).Inc()
	}
}

// SetChainLength reports the current chain length.
func (m *Metrics) SetChainLength(n int) {
	if m != nil {
		m.ChainLength.Set(float64(n))
	}
}

// IncChainAppend records one chain append.
func (m *Metrics) IncChainAppend() {
	if m != nil {
		m.ChainAppends.Inc()
	}
}
