package trust

import (
	"fmt"
	"math"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/model"
)

// Risk factor names as they appear in RiskEvaluation.Factors.
const (
	RiskAmount         = "amount"
	RiskNewDestination = "new_destination"
	RiskFrequency      = "frequency"
	RiskReputation     = "agent_reputation"
	RiskRoundAmount    = "round_amount"
)

// Flagged and recommendation breakpoints. They differ on purpose:
// flagging feeds reporting, the recommendation feeds the decision.
const (
	flagThreshold   = 60
	blockThreshold  = 80
	reviewThreshold = 50
)

// TransactionInput is one candidate transaction to evaluate. The
// transaction is not expected to be in the store yet.
type TransactionInput struct {
	AgentID     string `json:"agent_id"`
	Amount      string `json:"amount"`
	Destination string `json:"destination"`
	Chain       string `json:"chain,omitempty"`
}

// EvaluateTransaction scores a candidate transaction with five
// unweighted factors combined by simple average. It never fails:
// data-quality problems degrade individual factors to neutral scores.
func (s *Scorer) EvaluateTransaction(in TransactionInput) RiskEvaluation {
	now := s.now().UTC()
	history := s.store.TransactionsByAgent(in.AgentID)
	actions := s.store.ActionsByAgent(in.AgentID)
	anomalies := s.store.QueryAnomalies(func(a ledger.Anomaly) bool { return a.AgentID == in.AgentID })

	amount, amountOK := parseAmount(in.Amount)

	factors := []RiskFactor{
		amountRiskFactor(amount, amountOK, history),
		newDestinationFactor(in.Destination, history),
		frequencyFactor(history, now),
		reputationFactor(len(anomalies), len(actions)),
		roundAmountFactor(amount, amountOK),
	}

	var sum int
	for _, f := range factors {
		sum += f.Score
	}
	score := clamp(round(float64(sum) / float64(len(factors))))

	return RiskEvaluation{
		AgentID:        in.AgentID,
		Amount:         in.Amount,
		Destination:    in.Destination,
		Score:          score,
		Flagged:        score >= flagThreshold,
		Recommendation: riskRecommendation(score),
		Factors:        factors,
		EvaluatedAt:    now,
	}
}

func riskRecommendation(score int) model.Decision {
	switch {
	case score >= blockThreshold:
		return model.Block
	case score >= reviewThreshold:
		return model.Review
	default:
		return model.Approve
	}
}

// amountRiskFactor steps with magnitude, plus a surcharge when the
// amount dwarfs the agent's own historical average.
func amountRiskFactor(amount float64, ok bool, history []ledger.Transaction) RiskFactor {
	f := RiskFactor{Name: RiskAmount}
	if !ok {
		f.Score = 50
		f.Description = "unparsable amount, scored neutral"
		return f
	}

	var score int
	switch {
	case amount < 100:
		score = 5
	case amount < 1_000:
		score = 15
	case amount < 10_000:
		score = 35
	case amount < 50_000:
		score = 55
	case amount < 100_000:
		score = 75
	default:
		score = 95
	}

	if avg := historicalAverage(history); avg > 0 && amount > avg*5 {
		score += 20
		f.Description = fmt.Sprintf("amount %.2f exceeds 5x historical average %.2f", amount, avg)
	} else {
		f.Description = fmt.Sprintf("amount %.2f", amount)
	}

	f.Score = clamp(score)
	return f
}

func historicalAverage(history []ledger.Transaction) float64 {
	var sum float64
	var n int
	for _, tx := range history {
		if v, ok := parseAmount(tx.Amount); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// newDestinationFactor distinguishes a brand-new agent (moderate risk)
// from a known agent paying somewhere new (higher) or somewhere
// familiar (low).
func newDestinationFactor(destination string, history []ledger.Transaction) RiskFactor {
	f := RiskFactor{Name: RiskNewDestination}
	if len(history) == 0 {
		f.Score = 30
		f.Description = "no transaction history"
		return f
	}

	dest := normalizeAddress(destination)
	for _, tx := range history {
		if normalizeAddress(tx.Destination) == dest {
			f.Score = 5
			f.Description = "destination seen before"
			return f
		}
	}
	f.Score = 45
	f.Description = "first transfer to this destination"
	return f
}

// frequencyFactor counts the agent's transactions in the trailing hour.
func frequencyFactor(history []ledger.Transaction, now time.Time) RiskFactor {
	cutoff := now.Add(-time.Hour)
	count := 0
	for _, tx := range history {
		if tx.Timestamp.After(cutoff) {
			count++
		}
	}

	var score int
	switch {
	case count < 5:
		score = 5
	case count < 10:
		score = 25
	case count < 20:
		score = 45
	case count < 50:
		score = 70
	default:
		score = 90
	}
	return RiskFactor{
		Name:        RiskFrequency,
		Score:       score,
		Description: fmt.Sprintf("%d transactions in the trailing hour", count),
	}
}

// reputationFactor converts the agent's anomaly/action ratio directly
// into risk.
func reputationFactor(anomalies, actions int) RiskFactor {
	f := RiskFactor{Name: RiskReputation}
	if actions == 0 {
		f.Score = 40
		f.Description = "no action history"
		return f
	}
	f.Score = clamp(round(float64(anomalies) / float64(actions) * 100))
	f.Description = fmt.Sprintf("%d anomalies over %d actions", anomalies, actions)
	return f
}

// roundAmountFactor prices structuring patterns: round multiples and
// the just-under-10k band.
func roundAmountFactor(amount float64, ok bool) RiskFactor {
	f := RiskFactor{Name: RiskRoundAmount}
	if !ok {
		f.Score = 50
		f.Description = "unparsable amount, scored neutral"
		return f
	}

	score := 5
	desc := "non-round amount"
	switch {
	case isMultipleOf(amount, 10_000):
		score = 25
		desc = "round multiple of 10,000"
	case isMultipleOf(amount, 1_000):
		score = 15
		desc = "round multiple of 1,000"
	}
	if amount >= 9_000 && amount <= 10_000 {
		score += 20
		desc += ", inside the 9,000-10,000 structuring band"
	}

	f.Score = clamp(score)
	f.Description = desc
	return f
}

func isMultipleOf(amount, base float64) bool {
	return math.Mod(amount, base) == 0
}
