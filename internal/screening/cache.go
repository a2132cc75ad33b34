package screening

import (
	"strings"
	"sync"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

// resultCache is a provider-private address cache with per-entry TTL.
// Expired entries are evicted lazily on read; there is no background
// sweep. A non-positive TTL disables the cache entirely.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	result    model.ProviderResult
	expiresAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(in Input) string {
	return strings.ToLower(strings.TrimSpace(in.Address)) + "|" + strings.ToLower(in.Chain)
}

func (c *resultCache) get(in Input) (model.ProviderResult, bool) {
	if c == nil || c.ttl <= 0 {
		return model.ProviderResult{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(in)
	e, ok := c.entries[key]
	if !ok {
		return model.ProviderResult{}, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return model.ProviderResult{}, false
	}
	return e.result, true
}

func (c *resultCache) put(in Input, r model.ProviderResult) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(in)] = cacheEntry{
		result:    r,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *resultCache) size() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
