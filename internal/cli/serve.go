package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ledgerguard/ledgerguard/internal/config"
	"github.com/ledgerguard/ledgerguard/internal/server"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening HTTP server",
	Long: "Runs ledgerguard as a long-lived HTTP service. Screening, risk evaluation and\n" +
		"chain inspection are exposed under /v1. Config and watchlist files are\n" +
		"hot-reloaded on change.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, hash, err := config.LoadWithHash(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	srv, err := server.New(cfg, hash, cfgPath, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	reloader, err := server.NewReloader(srv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "ledgerguard listening on %s\n", cfg.Server.Addr)
	if reloader != nil {
		fmt.Fprintf(os.Stderr, "Watching: %s\n", strings.Join(reloader.Paths(), ", "))
	}
	fmt.Fprintln(os.Stderr)

	return srv.Start(ctx)
}
