package screening

import (
	"context"
	"strings"

	"github.com/ledgerguard/ledgerguard/internal/model"
)

// HeuristicProvider screens address shape rather than identity: burn
// addresses, throwaway vanity patterns, and malformed inputs. It is
// pure CPU and keeps no cache.
type HeuristicProvider struct {
	name string
}

// NewHeuristicProvider returns the structural screening provider.
func NewHeuristicProvider(name string) *HeuristicProvider {
	if name == "" {
		name = "heuristic"
	}
	return &HeuristicProvider{name: name}
}

// Name implements Provider.
func (p *HeuristicProvider) Name() string { return p.name }

// Healthy implements Provider.
func (p *HeuristicProvider) Healthy(_ context.Context) bool { return true }

// ScreenAddress implements Provider.
func (p *HeuristicProvider) ScreenAddress(_ context.Context, in Input) (model.ProviderResult, error) {
	addr := strings.ToLower(strings.TrimSpace(in.Address))
	var res model.ProviderResult

	add := func(severity model.Severity, score int, desc string, actions ...string) {
		res.Matched = true
		res.Signals = append(res.Signals, model.RiskSignal{
			Provider:    p.name,
			Category:    model.CategoryStructural,
			Severity:    severity,
			RiskScore:   score,
			Actions:     actions,
			Description: desc,
			Direction:   in.Direction,
		})
	}

	switch {
	case addr == "":
		add(model.SeverityMedium, 50, "empty address", model.ActionManualReview)
		return res, nil
	case isBurnAddress(addr):
		add(model.SeverityHigh, 70, "transfer to a burn address is unrecoverable", model.ActionManualReview)
	case isVanityRepeat(addr):
		add(model.SeverityLow, 25, "vanity repeat pattern, often a throwaway", model.ActionMonitor)
	}

	if hexLike(addr) && len(addr) != 42 {
		add(model.SeverityLow, 30, "hex address with non-standard length", model.ActionMonitor)
	}

	return res, nil
}

// isBurnAddress matches the conventional unrecoverable sinks.
func isBurnAddress(addr string) bool {
	if addr == "0x000000000000000000000000000000000000dead" {
		return true
	}
	if !strings.HasPrefix(addr, "0x") {
		return false
	}
	body := strings.TrimPrefix(addr, "0x")
	if body == "" {
		return false
	}
	return strings.Count(body, "0") == len(body)
}

// isVanityRepeat flags a trailing run of six identical characters.
func isVanityRepeat(addr string) bool {
	if len(addr) < 6 {
		return false
	}
	tail := addr[len(addr)-6:]
	for i := 1; i < len(tail); i++ {
		if tail[i] != tail[0] {
			return false
		}
	}
	return true
}

func hexLike(addr string) bool {
	if !strings.HasPrefix(addr, "0x") || len(addr) < 4 {
		return false
	}
	for _, r := range addr[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
