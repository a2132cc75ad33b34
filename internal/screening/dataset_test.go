package screening

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

func TestDatasetMatchesKnownAddress(t *testing.T) {
	p, err := NewDatasetProvider("dataset", DefaultDataset, 0)
	if err != nil {
		t.Fatalf("NewDatasetProvider: %v", err)
	}

	// Upper-cased on purpose; matching is case-insensitive.
	in := Input{
		Address:   "0x7F367CC41522CE07553E823BF3BE79A889DEBE1B",
		Direction: model.DirectionOutgoing,
	}
	res, err := p.ScreenAddress(context.Background(), in)
	if err != nil {
		t.Fatalf("ScreenAddress: %v", err)
	}
	if !res.Matched {
		t.Fatal("known sanctions fixture did not match")
	}
	if len(res.Signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(res.Signals))
	}
	sig := res.Signals[0]
	if sig.Provider != "dataset" {
		t.Errorf("provider = %q, want dataset", sig.Provider)
	}
	if sig.Category != model.CategorySanctions {
		t.Errorf("category = %q, want sanctions", sig.Category)
	}
	if sig.Severity != model.SeveritySevere {
		t.Errorf("severity = %s, want severe", sig.Severity)
	}
	if sig.RiskScore != 95 {
		t.Errorf("risk score = %d, want 95", sig.RiskScore)
	}
	if sig.Direction != model.DirectionOutgoing {
		t.Errorf("direction = %s, want outgoing", sig.Direction)
	}
	if sig.EntityName == "" {
		t.Error("entity name missing")
	}
}

func TestDatasetUnknownAddressIsClean(t *testing.T) {
	p, err := NewDatasetProvider("dataset", DefaultDataset, 0)
	if err != nil {
		t.Fatalf("NewDatasetProvider: %v", err)
	}
	res, err := p.ScreenAddress(context.Background(), Input{Address: "0x8ba1f109551bd432803012645ac136ddd64dba72"})
	if err != nil {
		t.Fatalf("ScreenAddress: %v", err)
	}
	if res.Matched || len(res.Signals) != 0 {
		t.Errorf("unknown address produced %+v", res)
	}
}

func TestDatasetChainScope(t *testing.T) {
	// The darknet fixture is scoped to bitcoin.
	const addr = "bc1qw4h8u6tdxt9q8p0kt8nvvt4yyw3r5wyw5ff999"
	p, err := NewDatasetProvider("dataset", DefaultDataset, 0)
	if err != nil {
		t.Fatalf("NewDatasetProvider: %v", err)
	}

	cases := []struct {
		chain string
		want  bool
	}{
		{chain: "bitcoin", want: true},
		{chain: "Bitcoin", want: true},
		{chain: "ethereum", want: false},
		{chain: "", want: false},
	}
	for _, tc := range cases {
		res, err := p.ScreenAddress(context.Background(), Input{Address: addr, Chain: tc.chain})
		if err != nil {
			t.Fatalf("chain %q: %v", tc.chain, err)
		}
		if res.Matched != tc.want {
			t.Errorf("chain %q: matched = %v, want %v", tc.chain, res.Matched, tc.want)
		}
	}
}

func TestDatasetServesRepeatsFromCache(t *testing.T) {
	p, err := NewDatasetProvider("dataset", DefaultDataset, time.Minute)
	if err != nil {
		t.Fatalf("NewDatasetProvider: %v", err)
	}
	in := Input{Address: DefaultDataset[0].Address}

	first, err := p.ScreenAddress(context.Background(), in)
	if err != nil {
		t.Fatalf("first ScreenAddress: %v", err)
	}
	if !first.Matched {
		t.Fatal("fixture did not match")
	}

	// Drop the backing entries; a repeat lookup must come from cache.
	p.entries = map[string][]DatasetEntry{}
	second, err := p.ScreenAddress(context.Background(), in)
	if err != nil {
		t.Fatalf("second ScreenAddress: %v", err)
	}
	if !second.Matched || len(second.Signals) != len(first.Signals) {
		t.Errorf("cached result = %+v, want the original match", second)
	}
}

func TestDatasetRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name  string
		entry DatasetEntry
	}{
		{name: "missing address", entry: DatasetEntry{Severity: "high", RiskScore: 10}},
		{name: "unknown severity", entry: DatasetEntry{Address: "0xabc", Severity: "apocalyptic", RiskScore: 10}},
		{name: "missing severity", entry: DatasetEntry{Address: "0xabc", RiskScore: 10}},
		{name: "score above 100", entry: DatasetEntry{Address: "0xabc", Severity: "high", RiskScore: 101}},
		{name: "negative score", entry: DatasetEntry{Address: "0xabc", Severity: "high", RiskScore: -1}},
	}
	for _, tc := range cases {
		if _, err := NewDatasetProvider("dataset", []DatasetEntry{tc.entry}, 0); err == nil {
			t.Errorf("%s: entry was accepted", tc.name)
		}
	}
}

func TestDatasetFileProviderLoadsOnInitialize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	doc := `entries:
  - address: "0xAAAA00000000000000000000000000000000AAAA"
    category: scam
    severity: high
    risk_score: 70
    entity_name: rug pull treasury
    actions: [manual_review]
`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := NewDatasetFileProvider("fileset", path, 0)
	if err != nil {
		t.Fatalf("NewDatasetFileProvider: %v", err)
	}
	if p.Healthy(context.Background()) {
		t.Error("file provider healthy before Initialize")
	}
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !p.Healthy(context.Background()) {
		t.Error("file provider unhealthy after Initialize")
	}

	res, err := p.ScreenAddress(context.Background(), Input{Address: "0xaaaa00000000000000000000000000000000aaaa"})
	if err != nil {
		t.Fatalf("ScreenAddress: %v", err)
	}
	if !res.Matched {
		t.Fatal("loaded entry did not match")
	}
	if got := res.Signals[0].EntityName; got != "rug pull treasury" {
		t.Errorf("entity name = %q", got)
	}
	if !strings.Contains(res.Signals[0].Description, "scam") {
		t.Errorf("description = %q, want the category named", res.Signals[0].Description)
	}
}

func TestDatasetFileProviderRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		p, err := NewDatasetFileProvider("fileset", filepath.Join(dir, "absent.yaml"), 0)
		if err != nil {
			t.Fatalf("NewDatasetFileProvider: %v", err)
		}
		if err := p.Initialize(context.Background()); err == nil {
			t.Error("Initialize accepted a missing file")
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		if err := os.WriteFile(path, []byte("entries: ["), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		p, err := NewDatasetFileProvider("fileset", path, 0)
		if err != nil {
			t.Fatalf("NewDatasetFileProvider: %v", err)
		}
		if err := p.Initialize(context.Background()); err == nil {
			t.Error("Initialize accepted malformed yaml")
		}
	})

	t.Run("bad entry", func(t *testing.T) {
		path := filepath.Join(dir, "badentry.yaml")
		doc := "entries:\n  - address: \"0xabc\"\n    severity: high\n    risk_score: 400\n"
		if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		p, err := NewDatasetFileProvider("fileset", path, 0)
		if err != nil {
			t.Fatalf("NewDatasetFileProvider: %v", err)
		}
		if err := p.Initialize(context.Background()); err == nil {
			t.Error("Initialize accepted an out-of-range risk score")
		}
	})
}
