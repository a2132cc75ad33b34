package watchlist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDoc is the YAML layout for a watchlist file.
type fileDoc struct {
	Blocklist []Entry `yaml:"blocklist"`
	Allowlist []Entry `yaml:"allowlist"`
}

// Load reads a watchlist YAML file. A missing file yields an empty
// manager rather than an error.
func Load(path string) (*Manager, error) {
	m := New()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("watchlist: read %s: %w", path, err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("watchlist: parse %s: %w", path, err)
	}
	if err := m.ImportBlocklist(doc.Blocklist); err != nil {
		return nil, fmt.Errorf("watchlist: %s: %w", path, err)
	}
	if err := m.ImportAllowlist(doc.Allowlist); err != nil {
		return nil, fmt.Errorf("watchlist: %s: %w", path, err)
	}
	return m, nil
}

// Save writes both lists, expired entries included, as YAML.
func (m *Manager) Save(path string) error {
	data, err := m.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("watchlist: write %s: %w", path, err)
	}
	return nil
}

// Snapshot serializes both lists, expired entries included, in the
// layout Save writes. The bytes round-trip through RestoreSnapshot.
func (m *Manager) Snapshot() ([]byte, error) {
	doc := fileDoc{
		Blocklist: m.ExportBlocklist(),
		Allowlist: m.ExportAllowlist(),
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("watchlist: marshal: %w", err)
	}
	return data, nil
}

// RestoreSnapshot merges a Snapshot payload into the manager. Existing
// entries for the same address and chain are replaced.
func (m *Manager) RestoreSnapshot(data []byte) error {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("watchlist: parse snapshot: %w", err)
	}
	if err := m.ImportBlocklist(doc.Blocklist); err != nil {
		return fmt.Errorf("watchlist: snapshot: %w", err)
	}
	if err := m.ImportAllowlist(doc.Allowlist); err != nil {
		return fmt.Errorf("watchlist: snapshot: %w", err)
	}
	return nil
}
