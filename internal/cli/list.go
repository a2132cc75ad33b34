package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerguard/ledgerguard/internal/config"
	"github.com/ledgerguard/ledgerguard/internal/watchlist"
)

var (
	listPath string
	listName string

	listAddChains  []string
	listAddReason  string
	listAddAddedBy string
	listAddTTL     time.Duration
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.PersistentFlags().StringVar(&listPath, "path", "", "watchlist file (default from config)")
	listCmd.PersistentFlags().StringVar(&listName, "list", "block", "which list to touch (block|allow)")

	listCmd.AddCommand(listAddCmd)
	listAddCmd.Flags().StringSliceVar(&listAddChains, "chains", nil, "chains the entry applies to (empty = all)")
	listAddCmd.Flags().StringVar(&listAddReason, "reason", "", "why the address is listed")
	listAddCmd.Flags().StringVar(&listAddAddedBy, "added-by", "", "who listed the address")
	listAddCmd.Flags().DurationVar(&listAddTTL, "ttl", 0, "expire the entry after this duration (0 = never)")

	listCmd.AddCommand(listRemoveCmd)
	listCmd.AddCommand(listShowCmd)
	listCmd.AddCommand(listImportCmd)
	listCmd.AddCommand(listExportCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage blocklist and allowlist entries",
	Long: "Edits the watchlist file the server and screen commands consult. Changes are\n" +
		"written back to the file; a running server picks them up via hot reload.",
}

var listAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Add an address to a list",
	Args:  cobra.ExactArgs(1),
	RunE:  runListAdd,
}

var listRemoveCmd = &cobra.Command{
	Use:   "remove <address>",
	Short: "Remove an address from a list",
	Args:  cobra.ExactArgs(1),
	RunE:  runListRemove,
}

var listShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print both lists as JSON",
	RunE:  runListShow,
}

var listImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge entries from another watchlist file",
	Args:  cobra.ExactArgs(1),
	RunE:  runListImport,
}

var listExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the lists to a new watchlist file",
	Args:  cobra.ExactArgs(1),
	RunE:  runListExport,
}

func runListAdd(cmd *cobra.Command, args []string) error {
	path, err := watchlistPath()
	if err != nil {
		return err
	}
	m, err := watchlist.Load(path)
	if err != nil {
		return err
	}

	entry := watchlist.Entry{
		Address: args[0],
		Chains:  listAddChains,
		Reason:  listAddReason,
		AddedBy: listAddAddedBy,
	}
	if listAddTTL > 0 {
		exp := time.Now().UTC().Add(listAddTTL)
		entry.ExpiresAt = &exp
	}

	switch listName {
	case "block":
		err = m.AddBlock(entry)
	case "allow":
		err = m.AddAllow(entry)
	default:
		return fmt.Errorf("unknown list %q: want block or allow", listName)
	}
	if err != nil {
		return err
	}

	if err := m.Save(path); err != nil {
		return err
	}
	blocked, allowed := m.Counts()
	fmt.Printf("Added %s to the %slist (%d blocked, %d allowed)\n", args[0], listName, blocked, allowed)
	return nil
}

func runListRemove(cmd *cobra.Command, args []string) error {
	path, err := watchlistPath()
	if err != nil {
		return err
	}
	m, err := watchlist.Load(path)
	if err != nil {
		return err
	}

	var removed bool
	switch listName {
	case "block":
		removed = m.RemoveBlock(args[0])
	case "allow":
		removed = m.RemoveAllow(args[0])
	default:
		return fmt.Errorf("unknown list %q: want block or allow", listName)
	}
	if !removed {
		return fmt.Errorf("%s is not on the %slist", args[0], listName)
	}

	if err := m.Save(path); err != nil {
		return err
	}
	fmt.Printf("Removed %s from the %slist\n", args[0], listName)
	return nil
}

func runListShow(cmd *cobra.Command, args []string) error {
	path, err := watchlistPath()
	if err != nil {
		return err
	}
	m, err := watchlist.Load(path)
	if err != nil {
		return err
	}

	doc := struct {
		Blocklist []watchlist.Entry `json:"blocklist"`
		Allowlist []watchlist.Entry `json:"allowlist"`
	}{
		Blocklist: m.ExportBlocklist(),
		Allowlist: m.ExportAllowlist(),
	}

	out, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runListImport(cmd *cobra.Command, args []string) error {
	path, err := watchlistPath()
	if err != nil {
		return err
	}
	m, err := watchlist.Load(path)
	if err != nil {
		return err
	}

	src, err := watchlist.Load(args[0])
	if err != nil {
		return err
	}
	if err := m.ImportBlocklist(src.ExportBlocklist()); err != nil {
		return err
	}
	if err := m.ImportAllowlist(src.ExportAllowlist()); err != nil {
		return err
	}

	if err := m.Save(path); err != nil {
		return err
	}
	blocked, allowed := m.Counts()
	fmt.Printf("Imported %s (%d blocked, %d allowed)\n", args[0], blocked, allowed)
	return nil
}

func runListExport(cmd *cobra.Command, args []string) error {
	path, err := watchlistPath()
	if err != nil {
		return err
	}
	m, err := watchlist.Load(path)
	if err != nil {
		return err
	}

	if err := m.Save(args[0]); err != nil {
		return err
	}
	blocked, allowed := m.Counts()
	fmt.Printf("Exported %d blocked and %d allowed entries to %s\n", blocked, allowed, args[0])
	return nil
}

// watchlistPath resolves the file the list commands edit. The --path flag
// wins; otherwise the config's lists path is used.
func watchlistPath() (string, error) {
	if listPath != "" {
		return listPath, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Lists.Path == "" {
		return "", fmt.Errorf("no watchlist file configured: set lists.path or pass --path")
	}
	return cfg.Lists.Path, nil
}
