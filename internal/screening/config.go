package screening

import (
	"errors"
	"fmt"
	"time"
)

var errNilWatchlist = errors.New("screening: watchlist manager is required")

// Config holds the aggregator's tunables. Durations are plain integer
// fields so the YAML stays unit-explicit.
type Config struct {
	// Parallel fans provider calls out concurrently; sequential mode
	// runs them one at a time for vendors with strict request rates.
	Parallel bool `yaml:"parallel"`

	// ProviderTimeoutMs bounds each provider call independently.
	ProviderTimeoutMs int `yaml:"provider_timeout_ms"`

	// CacheTTLSec is the per-entry TTL handed to providers that cache.
	// Zero disables caching.
	CacheTTLSec int `yaml:"cache_ttl_sec"`

	// Decision thresholds over the aggregate risk score.
	BlockThreshold  int `yaml:"block_threshold"`
	ReviewThreshold int `yaml:"review_threshold"`

	// MinProviderSuccess is the safety net: fewer successful providers
	// than this forces a review with a diagnostic signal.
	MinProviderSuccess int `yaml:"min_provider_success"`

	// AllowlistPriority makes an allowlist hit an immediate approve
	// with no provider calls.
	AllowlistPriority bool `yaml:"allowlist_priority"`

	// BlocklistPrecedence decides the tie when an address is both
	// listed and allowlisted while AllowlistPriority is off: true means
	// the blocklist wins, false lets the allowlist neutralize it and
	// sends the address to the providers.
	BlocklistPrecedence bool `yaml:"blocklist_precedence"`

	// Weights scales each provider's contribution by name; absent or
	// non-positive entries default to 1.0.
	Weights map[string]float64 `yaml:"weights"`
}

// DefaultConfig returns the aggregator defaults.
func DefaultConfig() Config {
	return Config{
		Parallel:            true,
		ProviderTimeoutMs:   5000,
		CacheTTLSec:         300,
		BlockThreshold:      80,
		ReviewThreshold:     40,
		MinProviderSuccess:  1,
		AllowlistPriority:   true,
		BlocklistPrecedence: true,
	}
}

// Validate rejects configurations that would produce meaningless
// verdicts.
func (c Config) Validate() error {
	if c.ProviderTimeoutMs <= 0 {
		return fmt.Errorf("screening: provider_timeout_ms must be positive, got %d", c.ProviderTimeoutMs)
	}
	if c.CacheTTLSec < 0 {
		return fmt.Errorf("screening: cache_ttl_sec must not be negative, got %d", c.CacheTTLSec)
	}
	if c.BlockThreshold < 0 || c.BlockThreshold > 100 {
		return fmt.Errorf("screening: block_threshold %d outside [0,100]", c.BlockThreshold)
	}
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 100 {
		return fmt.Errorf("screening: review_threshold %d outside [0,100]", c.ReviewThreshold)
	}
	if c.ReviewThreshold > c.BlockThreshold {
		return fmt.Errorf("screening: review_threshold %d above block_threshold %d",
			c.ReviewThreshold, c.BlockThreshold)
	}
	if c.MinProviderSuccess < 0 {
		return fmt.Errorf("screening: min_provider_success must not be negative, got %d", c.MinProviderSuccess)
	}
	for name, w := range c.Weights {
		if w <= 0 {
			return fmt.Errorf("screening: weight for provider %q must be positive, got %v", name, w)
		}
	}
	return nil
}

// ProviderTimeout returns the per-provider deadline.
func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMs) * time.Millisecond
}

// CacheTTL returns the provider cache TTL.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// WeightFor returns the aggregation weight for a provider name.
func (c Config) WeightFor(name string) float64 {
	if w, ok := c.Weights[name]; ok && w > 0 {
		return w
	}
	return 1.0
}
