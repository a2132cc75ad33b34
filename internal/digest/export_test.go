package digest

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	c := buildChain(t, 4)

	data, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	imported, err := Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := imported.Len(); got != 4 {
		t.Errorf("imported Len = %d, want 4", got)
	}
	if imported.TerminalDigest() != c.TerminalDigest() {
		t.Error("terminal digest changed across export/import")
	}

	res := imported.Verify()
	if !res.Valid {
		t.Errorf("imported chain failed verify: %s (index %d)", res.Reason, res.BreakIndex)
	}
}

func TestExportEmptyChain(t *testing.T) {
	data, err := New().Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	imported, err := Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.Len() != 0 {
		t.Errorf("imported Len = %d, want 0", imported.Len())
	}
}

func TestImportRejectsBadEnvelope(t *testing.T) {
	c := buildChain(t, 2)
	valid, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	mutate := func(t *testing.T, fn func(*Export)) []byte {
		t.Helper()
		var env Export
		if err := json.Unmarshal(valid, &env); err != nil {
			t.Fatal(err)
		}
		fn(&env)
		data, err := json.Marshal(env)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	cases := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"not json", []byte("{nope"), "parse export"},
		{"bad version", mutate(t, func(e *Export) { e.Version = 99 }), "unsupported export version"},
		{"bad genesis", mutate(t, func(e *Export) { e.Genesis = "sha256:ff" }), "unknown genesis"},
		{"length mismatch", mutate(t, func(e *Export) { e.Length = 7 }), "declared length"},
		{"terminal mismatch", mutate(t, func(e *Export) { e.TerminalDigest = "sha256:00" }), "terminal digest"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(tc.data)
			if err == nil {
				t.Fatal("Import accepted a bad envelope")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestImportedTamperFailsVerify(t *testing.T) {
	c := buildChain(t, 3)
	data, err := c.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var env Export
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	env.Links[1].Entry.Actor = "intruder"
	tampered, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	// The envelope shape is still fine, so Import succeeds.
	imported, err := Import(tampered)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	res := imported.Verify()
	if res.Valid {
		t.Fatal("Verify reported tampered import as valid")
	}
	if res.BreakIndex != 1 {
		t.Errorf("BreakIndex = %d, want 1", res.BreakIndex)
	}
}
