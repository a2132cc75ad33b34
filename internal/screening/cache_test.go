package screening

import (
	"testing"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

func TestCacheServesWithinTTL(t *testing.T) {
	c := newResultCache(5 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	in := Input{Address: "0xABC", Chain: "ethereum"}
	c.put(in, model.ProviderResult{Matched: true})

	base = base.Add(4 * time.Minute)
	got, ok := c.get(in)
	if !ok || !got.Matched {
		t.Fatalf("get = %+v, %v; want cached match", got, ok)
	}
}

func TestCacheKeyNormalizes(t *testing.T) {
	c := newResultCache(time.Minute)
	c.put(Input{Address: " 0xAbC ", Chain: "ETH"}, model.ProviderResult{Matched: true})
	if _, ok := c.get(Input{Address: "0xabc", Chain: "eth"}); !ok {
		t.Error("lookup missed across case and whitespace variants")
	}
	if _, ok := c.get(Input{Address: "0xabc", Chain: "bitcoin"}); ok {
		t.Error("lookup crossed chains")
	}
}

func TestCacheExpiresLazily(t *testing.T) {
	c := newResultCache(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	in := Input{Address: "0xabc"}
	c.put(in, model.ProviderResult{Matched: true})

	// The boundary instant counts as expired. No sweep runs: the entry
	// stays stored until a read touches it.
	base = base.Add(time.Minute)
	if c.size() != 1 {
		t.Fatalf("size = %d before read, want 1", c.size())
	}
	if _, ok := c.get(in); ok {
		t.Fatal("expired entry was served")
	}
	if c.size() != 0 {
		t.Errorf("size = %d after read, want 0", c.size())
	}
}

func TestCacheDisabledByZeroTTL(t *testing.T) {
	c := newResultCache(0)
	in := Input{Address: "0xabc"}
	c.put(in, model.ProviderResult{Matched: true})
	if c.size() != 0 {
		t.Errorf("size = %d, want 0 with caching disabled", c.size())
	}
	if _, ok := c.get(in); ok {
		t.Error("disabled cache served an entry")
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var c *resultCache
	c.put(Input{Address: "0xabc"}, model.ProviderResult{})
	if _, ok := c.get(Input{Address: "0xabc"}); ok {
		t.Error("nil cache served an entry")
	}
	if c.size() != 0 {
		t.Error("nil cache reported nonzero size")
	}
}
