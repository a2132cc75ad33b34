package digest

import (
	"testing"
)

func FuzzImport(f *testing.F) {
	// Seed with a valid 3-entry export.
	c := New()
	for i := 0; i < 3; i++ {
		c.Append(Entry{
			ID:          "e-fuzz",
			Timestamp:   "2026-01-02T03:04:05.000Z",
			Actor:       "agent-1",
			Kind:        "action",
			Description: "seed",
		})
	}
	seed, err := c.Export()
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte(`{"version":1,"genesis":"` + GenesisDigest + `","length":0,"links":[]}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`not json`))

	f.Fuzz(func(t *testing.T, data []byte) {
		imported, err := Import(data)
		if err != nil {
			return
		}
		// Whatever Import accepts must survive Verify and re-export
		// without panicking.
		res := imported.Verify()
		if res.Valid && res.BreakIndex != -1 {
			t.Errorf("valid chain with break index %d", res.BreakIndex)
		}
		if !res.Valid && res.Reason == "" {
			t.Error("invalid chain without a reason")
		}
		if _, err := imported.Export(); err != nil {
			t.Errorf("re-export failed: %v", err)
		}
	})
}
