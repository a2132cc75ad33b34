package watchlist

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one blocklist or allowlist record. Empty Chains means the
// entry applies on every chain. ExpiresAt is optional; expired entries
// stay stored but are treated as absent by lookups.
type Entry struct {
	Address   string     `json:"address" yaml:"address"`
	Chains    []string   `json:"chains,omitempty" yaml:"chains,omitempty"`
	Reason    string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	AddedBy   string     `json:"added_by,omitempty" yaml:"added_by,omitempty"`
	AddedAt   time.Time  `json:"added_at" yaml:"added_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Manager keeps two independent address lists with O(1) case-insensitive
// lookup. The maps are mutated only through Manager methods; expiry is
// checked lazily at read time, never swept.
type Manager struct {
	mu        sync.RWMutex
	blocklist map[string]Entry
	allowlist map[string]Entry
	now       func() time.Time
}

// New returns a manager with empty lists.
func New() *Manager {
	return &Manager{
		blocklist: make(map[string]Entry),
		allowlist: make(map[string]Entry),
		now:       time.Now,
	}
}

// AddBlock inserts or replaces the blocklist entry for its address.
// An empty AddedAt is filled with the current time.
func (m *Manager) AddBlock(e Entry) error {
	return m.add(&m.blocklist, e)
}

// AddAllow inserts or replaces the allowlist entry for its address.
func (m *Manager) AddAllow(e Entry) error {
	return m.add(&m.allowlist, e)
}

func (m *Manager) add(list *map[string]Entry, e Entry) error {
	key := normalize(e.Address)
	if key == "" {
		return errors.New("watchlist: entry address is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.AddedAt.IsZero() {
		e.AddedAt = m.now().UTC()
	}
	(*list)[key] = e
	return nil
}

// RemoveBlock deletes the blocklist entry for address, reporting
// whether one existed.
func (m *Manager) RemoveBlock(address string) bool {
	return m.remove(m.blocklist, address)
}

// RemoveAllow deletes the allowlist entry for address, reporting
// whether one existed.
func (m *Manager) RemoveAllow(address string) bool {
	return m.remove(m.allowlist, address)
}

func (m *Manager) remove(list map[string]Entry, address string) bool {
	key := normalize(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := list[key]; !ok {
		return false
	}
	delete(list, key)
	return true
}

// IsBlocklisted reports whether address is actively blocklisted for
// chain, returning the matching entry.
func (m *Manager) IsBlocklisted(address, chain string) (bool, Entry) {
	return m.lookup(m.blocklist, address, chain)
}

// IsAllowlisted reports whether address is actively allowlisted for
// chain, returning the matching entry.
func (m *Manager) IsAllowlisted(address, chain string) (bool, Entry) {
	return m.lookup(m.allowlist, address, chain)
}

func (m *Manager) lookup(list map[string]Entry, address, chain string) (bool, Entry) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := list[normalize(address)]
	if !ok {
		return false, Entry{}
	}
	if e.ExpiresAt != nil && !m.now().Before(*e.ExpiresAt) {
		return false, Entry{}
	}
	if !chainMatches(e.Chains, chain) {
		return false, Entry{}
	}
	return true, e
}

// chainMatches applies the entry's chain scope. An unscoped entry
// matches every query; a scoped entry matches only its named chains,
// so an empty query chain never satisfies a scoped entry.
func chainMatches(scope []string, chain string) bool {
	if len(scope) == 0 {
		return true
	}
	want := normalize(chain)
	for _, c := range scope {
		if normalize(c) == want {
			return true
		}
	}
	return false
}

// ExportBlocklist returns every blocklist entry, including expired
// ones, sorted by address.
func (m *Manager) ExportBlocklist() []Entry {
	return m.export(m.blocklist)
}

// ExportAllowlist returns every allowlist entry, including expired
// ones, sorted by address.
func (m *Manager) ExportAllowlist() []Entry {
	return m.export(m.allowlist)
}

func (m *Manager) export(list map[string]Entry) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, 0, len(list))
	for _, e := range list {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return normalize(out[i].Address) < normalize(out[j].Address)
	})
	return out
}

// ImportBlocklist bulk-adds entries to the blocklist. Entries with an
// empty address are rejected; earlier entries in the batch are kept.
func (m *Manager) ImportBlocklist(entries []Entry) error {
	for _, e := range entries {
		if err := m.AddBlock(e); err != nil {
			return err
		}
	}
	return nil
}

// ImportAllowlist bulk-adds entries to the allowlist.
func (m *Manager) ImportAllowlist(entries []Entry) error {
	for _, e := range entries {
		if err := m.AddAllow(e); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns the stored sizes of both lists, expired entries
// included.
func (m *Manager) Counts() (blocked, allowed int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocklist), len(m.allowlist)
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
