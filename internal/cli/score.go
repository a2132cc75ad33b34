package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerguard/ledgerguard/internal/ledger"
	"github.com/ledgerguard/ledgerguard/internal/trust"
)

var scoreHistory string

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreHistory, "history", "", "path to a ledger history YAML file")
}

var scoreCmd = &cobra.Command{
	Use:   "score <agent-id>",
	Short: "Compute an agent's trust score from ledger history",
	Long: "Scores an agent across history depth, task completion, anomaly rate,\n" +
		"transaction consistency and compliance. Without --history the agent scores\n" +
		"as brand new.",
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	led, err := historyLedger(scoreHistory)
	if err != nil {
		return err
	}

	scorer, err := trust.NewScorer(led)
	if err != nil {
		return err
	}

	score := scorer.AgentTrustScore(args[0])

	out, _ := json.MarshalIndent(score, "", "  ")
	fmt.Println(string(out))
	return nil
}

// historyLedger loads the ledger fixture at path, or returns an empty
// ledger when no path is given.
func historyLedger(path string) (*ledger.Ledger, error) {
	if path == "" {
		return ledger.New(), nil
	}
	led, err := ledger.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return led, nil
}
