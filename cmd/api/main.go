package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cryptodao/internal/app/bootstrap"
	"cryptodao/internal/platform/logging"
	"cryptodao/internal/platform/version"

	"github.com/spf13/cobra"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server until SIGINT/SIGTERM.
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel string
		seedFile string
	)

	cmd := &cobra.Command{
		Use:          "cryptodao-api",
		Short:        "NFT-gated DAO governance API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logLevel, seedFile)
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file with initial members and deposits (overrides SEED_FILE)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cryptodao-api version %s (build: %s)\n", version.Version, version.BuildTime)
		},
	})
	return cmd
}

func run(logLevel string, seedFile string) error {
	logger, err := logging.New(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	app, err := bootstrap.BuildAPI(bootstrap.Options{SeedFile: seedFile})
	if err != nil {
		return fmt.Errorf("bootstrap api: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("api shutdown close failed", "event", "api_close_failed", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
