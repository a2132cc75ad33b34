package screening

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

// DatasetEntry is one known-entity record in a static screening dataset.
type DatasetEntry struct {
	Address    string   `yaml:"address"`
	Category   string   `yaml:"category"`
	Severity   string   `yaml:"severity"`
	RiskScore  int      `yaml:"risk_score"`
	EntityName string   `yaml:"entity_name,omitempty"`
	EntityType string   `yaml:"entity_type,omitempty"`
	Chains     []string `yaml:"chains,omitempty"`
	Actions    []string `yaml:"actions,omitempty"`
}

// DatasetProvider screens addresses against a static dataset of known
// entities. Matching is case-insensitive and chain-scoped; results are
// cached per address with a TTL.
type DatasetProvider struct {
	name    string
	path    string
	entries map[string][]DatasetEntry
	cache   *resultCache
}

// NewDatasetProvider builds a provider over the given entries.
func NewDatasetProvider(name string, entries []DatasetEntry, cacheTTL time.Duration) (*DatasetProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("screening: dataset provider name is required")
	}
	p := &DatasetProvider{
		name:    name,
		entries: make(map[string][]DatasetEntry),
		cache:   newResultCache(cacheTTL),
	}
	for _, e := range entries {
		if err := p.addEntry(e); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewDatasetFileProvider builds a provider that loads its dataset from
// a YAML file on Initialize.
func NewDatasetFileProvider(name, path string, cacheTTL time.Duration) (*DatasetProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("screening: dataset path is required")
	}
	p, err := NewDatasetProvider(name, nil, cacheTTL)
	if err != nil {
		return nil, err
	}
	p.path = path
	// Unhealthy until Initialize loads the file.
	p.entries = nil
	return p, nil
}

func (p *DatasetProvider) addEntry(e DatasetEntry) error {
	key := strings.ToLower(strings.TrimSpace(e.Address))
	if key == "" {
		return fmt.Errorf("screening: dataset entry without address")
	}
	if p.entries == nil {
		p.entries = make(map[string][]DatasetEntry)
	}
	if model.Severity(e.Severity).Rank() < 0 {
		return fmt.Errorf("screening: dataset entry %s has unknown severity %q", e.Address, e.Severity)
	}
	if e.RiskScore < 0 || e.RiskScore > 100 {
		return fmt.Errorf("screening: dataset entry %s has risk score %d outside [0,100]", e.Address, e.RiskScore)
	}
	p.entries[key] = append(p.entries[key], e)
	return nil
}

// Name implements Provider.
func (p *DatasetProvider) Name() string { return p.name }

// Initialize loads the dataset file when the provider was built with
// one. Providers built from in-memory entries are ready immediately.
func (p *DatasetProvider) Initialize(_ context.Context) error {
	if p.path == "" {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("screening: read dataset %s: %w", p.path, err)
	}
	var doc struct {
		Entries []DatasetEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("screening: parse dataset %s: %w", p.path, err)
	}
	for _, e := range doc.Entries {
		if err := p.addEntry(e); err != nil {
			return err
		}
	}
	return nil
}

// ScreenAddress implements Provider.
func (p *DatasetProvider) ScreenAddress(_ context.Context, in Input) (model.ProviderResult, error) {
	if cached, ok := p.cache.get(in); ok {
		return cached, nil
	}

	var res model.ProviderResult
	for _, e := range p.entries[strings.ToLower(strings.TrimSpace(in.Address))] {
		if !datasetChainMatches(e.Chains, in.Chain) {
			continue
		}
		res.Matched = true
		res.Signals = append(res.Signals, model.RiskSignal{
			Provider:    p.name,
			Category:    e.Category,
			Severity:    model.Severity(e.Severity),
			RiskScore:   e.RiskScore,
			Actions:     append([]string(nil), e.Actions...),
			Description: fmt.Sprintf("address matches %s dataset entry", e.Category),
			EntityName:  e.EntityName,
			EntityType:  model.EntityType(e.EntityType),
			Direction:   in.Direction,
		})
	}

	p.cache.put(in, res)
	return res, nil
}

// Healthy implements Provider. A dataset provider is healthy once its
// entries are loaded.
func (p *DatasetProvider) Healthy(_ context.Context) bool {
	return p.entries != nil
}

func datasetChainMatches(scope []string, chain string) bool {
	if len(scope) == 0 {
		return true
	}
	want := strings.ToLower(chain)
	for _, c := range scope {
		if strings.ToLower(c) == want {
			return true
		}
	}
	return false
}
