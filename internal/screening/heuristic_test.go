package screening

import (
	"context"
	"testing"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

func heuristicScreen(t *testing.T, address string) model.ProviderResult {
	t.Helper()
	p := NewHeuristicProvider("")
	res, err := p.ScreenAddress(context.Background(), Input{Address: address})
	if err != nil {
		t.Fatalf("ScreenAddress(%q): %v", address, err)
	}
	return res
}

func TestHeuristicCleanAddress(t *testing.T) {
	res := heuristicScreen(t, "0x8ba1f109551bd432803012645ac136ddd64dba72")
	if res.Matched || len(res.Signals) != 0 {
		t.Errorf("clean address produced %+v", res)
	}
}

func TestHeuristicEmptyAddress(t *testing.T) {
	for _, addr := range []string{"", "   "} {
		res := heuristicScreen(t, addr)
		if len(res.Signals) != 1 {
			t.Fatalf("address %q: signals = %d, want 1", addr, len(res.Signals))
		}
		sig := res.Signals[0]
		if sig.Severity != model.SeverityMedium || sig.RiskScore != 50 {
			t.Errorf("address %q: signal = %s/%d, want medium/50", addr, sig.Severity, sig.RiskScore)
		}
	}
}

func TestHeuristicBurnAddresses(t *testing.T) {
	for _, addr := range []string{
		"0x000000000000000000000000000000000000dEaD",
		"0x0000000000000000000000000000000000000000",
	} {
		res := heuristicScreen(t, addr)
		if !res.Matched {
			t.Fatalf("burn address %q did not match", addr)
		}
		sig := res.Signals[0]
		if sig.Severity != model.SeverityHigh || sig.RiskScore != 70 {
			t.Errorf("address %q: signal = %s/%d, want high/70", addr, sig.Severity, sig.RiskScore)
		}
		if sig.Category != model.CategoryStructural {
			t.Errorf("address %q: category = %q", addr, sig.Category)
		}
	}
}

func TestHeuristicVanityTail(t *testing.T) {
	res := heuristicScreen(t, "0x12345678901234567890123456789012ffffffff")
	if len(res.Signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(res.Signals))
	}
	sig := res.Signals[0]
	if sig.Severity != model.SeverityLow || sig.RiskScore != 25 {
		t.Errorf("signal = %s/%d, want low/25", sig.Severity, sig.RiskScore)
	}
}

func TestHeuristicNonStandardHexLength(t *testing.T) {
	res := heuristicScreen(t, "0xabcdef12")
	if len(res.Signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(res.Signals))
	}
	if got := res.Signals[0].RiskScore; got != 30 {
		t.Errorf("risk score = %d, want 30", got)
	}
}

func TestHeuristicStacksBurnAndLength(t *testing.T) {
	// A short all-zero hex string trips both checks.
	res := heuristicScreen(t, "0x00000000")
	if len(res.Signals) != 2 {
		t.Fatalf("signals = %d, want 2", len(res.Signals))
	}
	if got := res.MaxSignalScore(); got != 70 {
		t.Errorf("MaxSignalScore = %d, want 70", got)
	}
}

func TestHeuristicIgnoresNonHexSchemes(t *testing.T) {
	// Bech32 and base58 addresses get no length signal.
	for _, addr := range []string{
		"bc1qw4h8u6tdxt9q8p0kt8nvvt4yyw3r5wyw5ff999",
		"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
	} {
		res := heuristicScreen(t, addr)
		for _, sig := range res.Signals {
			if sig.RiskScore == 30 {
				t.Errorf("address %q got a hex length signal", addr)
			}
		}
	}
}

func TestHeuristicDefaultName(t *testing.T) {
	if got := NewHeuristicProvider("").Name(); got != "heuristic" {
		t.Errorf("Name = %q, want heuristic", got)
	}
	if got := NewHeuristicProvider("shape").Name(); got != "shape" {
		t.Errorf("Name = %q, want shape", got)
	}
}
