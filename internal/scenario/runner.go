package scenario

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/screening"
	"github.com/ledgerguard/ledgerguard/internal/trust"
)

// Run evaluates all cases in a scenario against the given aggregator.
// Cases are independent: risk-only cases score against an empty ledger,
// so their expectations are deterministic.
func Run(ctx context.Context, s *Scenario, agg *screening.Aggregator) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	scorer, scorerErr := trust.NewScorer(ledger.New())

	for i, c := range s.Cases {
		cr := CaseResult{Index: i + 1}

		expected, ok := parseExpect(c.Expect)
		if !ok {
			cr.Expected = c.Expect
			cr.Reason = fmt.Sprintf("expect must be approve, review, or block, got %q", c.Expect)
			result.Failed++
			result.Cases = append(result.Cases, cr)
			continue
		}
		cr.Expected = string(expected)

		chain := c.Chain
		if chain == "" {
			chain = s.Chain
		}

		var actual model.Decision
		switch {
		case c.Address != "":
			cr.Kind = "address"
			cr.Target = c.Address
			res := agg.ScreenAddress(ctx, screening.Input{
				Address:   c.Address,
				Chain:     chain,
				Direction: model.Direction(c.Direction),
				Amount:    c.Amount,
			})
			actual = res.Decision
			cr.Reason = fmt.Sprintf("severity %s, score %d", res.Severity, res.RiskScore)

		case c.From != "" || c.To != "":
			cr.Kind = "transaction"
			cr.Target = c.From + " -> " + c.To
			res := agg.ScreenTransaction(ctx, c.From, c.To, c.Amount, chain)
			actual = res.Decision
			cr.Reason = fmt.Sprintf("from %s, to %s", res.From.Decision, res.To.Decision)

		case c.Agent != "":
			cr.Kind = "risk"
			cr.Target = c.Agent
			if scorerErr != nil {
				cr.Reason = scorerErr.Error()
				result.Failed++
				result.Cases = append(result.Cases, cr)
				continue
			}
			ev := scorer.EvaluateTransaction(trust.TransactionInput{
				AgentID:     c.Agent,
				Amount:      c.Amount,
				Destination: c.Destination,
				Chain:       chain,
			})
			actual = ev.Recommendation
			cr.Reason = fmt.Sprintf("risk score %d, flagged %v", ev.Score, ev.Flagged)

		default:
			cr.Reason = "case names no address, transaction, or agent"
			result.Failed++
			result.Cases = append(result.Cases, cr)
			continue
		}

		cr.Actual = string(actual)
		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

// LoadAndRun loads a scenario YAML file and runs it.
func LoadAndRun(ctx context.Context, path string, agg *screening.Aggregator) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("scenario %s has no cases", path)
	}

	result := Run(ctx, &s, agg)
	result.File = path
	return result, nil
}

func parseExpect(s string) (model.Decision, bool) {
	switch d := model.Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case model.Approve, model.Review, model.Block:
		return d, true
	default:
		return "", false
	}
}
