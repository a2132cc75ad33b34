package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerguard/ledgerguard/internal/digest"
	"github.com/ledgerguard/ledgerguard/internal/persist"
)

var (
	chainFile string
	chainDB   string
	chainName string

	chainActor       string
	chainKind        string
	chainCorrelation string

	chainOut string
)

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.PersistentFlags().StringVar(&chainFile, "file", "", "path to an exported chain JSON file")
	chainCmd.PersistentFlags().StringVar(&chainDB, "db", "", "path to a SQLite checkpoint database")
	chainCmd.PersistentFlags().StringVar(&chainName, "name", "main", "chain name inside the checkpoint database")

	chainCmd.AddCommand(chainVerifyCmd)

	chainCmd.AddCommand(chainShowCmd)
	chainShowCmd.Flags().StringVar(&chainActor, "actor", "", "only links recorded by this actor")
	chainShowCmd.Flags().StringVar(&chainKind, "kind", "", "only links of this kind")
	chainShowCmd.Flags().StringVar(&chainCorrelation, "correlation", "", "only links with this correlation ID")

	chainCmd.AddCommand(chainExportCmd)
	chainExportCmd.Flags().StringVar(&chainOut, "out", "", "write the export to this file instead of stdout")
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Digest chain operations",
	Long: "Commands for verifying, inspecting and exporting the hash-linked digest chain.\n" +
		"Chains are read from an export file (--file) or a checkpoint database (--db).",
}

var chainVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify digest chain integrity",
	Long: "Recomputes every link digest from the genesis value forward and checks it\n" +
		"against the recorded one. Exits 0 if intact, 1 if broken.",
	RunE: runChainVerify,
}

var chainShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Inspect chain links and summary counts",
	RunE:  runChainShow,
}

var chainExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a chain as portable JSON",
	RunE:  runChainExport,
}

func runChainVerify(cmd *cobra.Command, args []string) error {
	chain, err := loadChain(cmd)
	if err != nil {
		return err
	}

	result := chain.Verify()
	if result.Valid {
		fmt.Printf("OK: %d links verified\n", result.Length)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at link %d: %s\n", result.BreakIndex, result.Reason)
	os.Exit(1)
	return nil
}

func runChainShow(cmd *cobra.Command, args []string) error {
	chain, err := loadChain(cmd)
	if err != nil {
		return err
	}

	result := chain.Inspect(digest.Filter{
		Actor:         chainActor,
		Kind:          chainKind,
		CorrelationID: chainCorrelation,
	})

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runChainExport(cmd *cobra.Command, args []string) error {
	chain, err := loadChain(cmd)
	if err != nil {
		return err
	}

	data, err := chain.Export()
	if err != nil {
		return err
	}

	if chainOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(chainOut, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %s\n", chainOut)
	return nil
}

// loadChain reads a chain from whichever source flag is set. Export files
// win over the checkpoint database when both are given.
func loadChain(cmd *cobra.Command) (*digest.Chain, error) {
	if chainFile != "" {
		data, err := os.ReadFile(chainFile)
		if err != nil {
			return nil, fmt.Errorf("read chain export: %w", err)
		}
		return digest.Import(data)
	}

	if chainDB != "" {
		store, err := persist.OpenSQLite(chainDB)
		if err != nil {
			return nil, fmt.Errorf("open checkpoint database: %w", err)
		}
		defer store.Close()

		data, err := store.Load(cmd.Context(), "chain-"+chainName)
		if errors.Is(err, persist.ErrNotFound) {
			return nil, fmt.Errorf("no checkpoint for chain %q in %s", chainName, chainDB)
		}
		if err != nil {
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
		return digest.Import(data)
	}

	return nil, errors.New("one of --file or --db is required")
}
