package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerguard/ledgerguard/internal/model"
	"github.com/ledgerguard/ledgerguard/internal/screening"
)

var (
	screenChain     string
	screenDirection string
	screenAmount    string

	screenTxFrom   string
	screenTxTo     string
	screenTxAmount string
	screenTxChain  string
)

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVar(&screenChain, "chain", "ethereum", "chain the address lives on")
	screenCmd.Flags().StringVar(&screenDirection, "direction", "both", "transfer direction (incoming|outgoing|both)")
	screenCmd.Flags().StringVar(&screenAmount, "amount", "", "transfer amount for context (optional)")

	screenCmd.AddCommand(screenTxCmd)
	screenTxCmd.Flags().StringVar(&screenTxFrom, "from", "", "source address")
	screenTxCmd.Flags().StringVar(&screenTxTo, "to", "", "destination address (required)")
	screenTxCmd.Flags().StringVar(&screenTxAmount, "amount", "", "transfer amount")
	screenTxCmd.Flags().StringVar(&screenTxChain, "chain", "ethereum", "chain the transfer settles on")
	screenTxCmd.MarkFlagRequired("to")
}

var screenCmd = &cobra.Command{
	Use:   "screen <address>",
	Short: "Screen an address against configured providers",
	Long: "Runs an address through every configured screening provider plus the local\n" +
		"watchlists and prints the aggregated verdict as JSON.",
	Args: cobra.ExactArgs(1),
	RunE: runScreen,
}

var screenTxCmd = &cobra.Command{
	Use:   "tx",
	Short: "Screen both sides of a transaction",
	RunE:  runScreenTx,
}

func runScreen(cmd *cobra.Command, args []string) error {
	dir, err := parseDirection(screenDirection)
	if err != nil {
		return err
	}

	agg, _, err := loadAggregator(cmd.Context())
	if err != nil {
		return err
	}

	res := agg.ScreenAddress(cmd.Context(), screening.Input{
		Address:   args[0],
		Chain:     screenChain,
		Direction: dir,
		Amount:    screenAmount,
	})

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runScreenTx(cmd *cobra.Command, args []string) error {
	agg, _, err := loadAggregator(cmd.Context())
	if err != nil {
		return err
	}

	res := agg.ScreenTransaction(cmd.Context(), screenTxFrom, screenTxTo, screenTxAmount, screenTxChain)

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	return nil
}

func parseDirection(s string) (model.Direction, error) {
	switch s {
	case "incoming":
		return model.DirectionIncoming, nil
	case "outgoing":
		return model.DirectionOutgoing, nil
	case "both", "":
		return model.DirectionBoth, nil
	default:
		return "", fmt.Errorf("invalid direction %q: want incoming, outgoing, or both", s)
	}
}
