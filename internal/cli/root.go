package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// cfgPath is the value of the persistent --config flag. Empty means the
// default path under the user's home directory.
var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "ledgerguard",
	Short: "Screening and audit engine for agent-driven transfers",
	Long: "Screens addresses and transactions against configurable providers, scores agent\n" +
		"trust and transaction risk from ledger history, and records every decision in a\n" +
		"hash-linked digest chain.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ~/.ledgerguard/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
