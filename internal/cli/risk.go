package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerguard/ledgerguard/internal/trust"
)

var (
	riskAgent       string
	riskAmount      string
	riskDestination string
	riskChain       string
	riskHistory     string
)

func init() {
	rootCmd.AddCommand(riskCmd)
	riskCmd.Flags().StringVar(&riskAgent, "agent", "", "agent initiating the transfer (required)")
	riskCmd.Flags().StringVar(&riskAmount, "amount", "", "transfer amount (required)")
	riskCmd.Flags().StringVar(&riskDestination, "destination", "", "destination address (required)")
	riskCmd.Flags().StringVar(&riskChain, "chain", "", "chain the transfer settles on")
	riskCmd.Flags().StringVar(&riskHistory, "history", "", "path to a ledger history YAML file")
	riskCmd.MarkFlagRequired("agent")
	riskCmd.MarkFlagRequired("amount")
	riskCmd.MarkFlagRequired("destination")
}

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Evaluate the risk of a proposed transfer",
	Long: "Scores a proposed transfer across amount, destination novelty, frequency,\n" +
		"agent reputation and amount shape, then prints the factor breakdown and\n" +
		"recommendation as JSON.",
	RunE: runRisk,
}

func runRisk(cmd *cobra.Command, args []string) error {
	led, err := historyLedger(riskHistory)
	if err != nil {
		return err
	}

	scorer, err := trust.NewScorer(led)
	if err != nil {
		return err
	}

	eval := scorer.EvaluateTransaction(trust.TransactionInput{
		AgentID:     riskAgent,
		Amount:      riskAmount,
		Destination: riskDestination,
		Chain:       riskChain,
	})

	out, _ := json.MarshalIndent(eval, "", "  ")
	fmt.Println(string(out))
	return nil
}
