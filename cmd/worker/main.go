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

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Relay the governance outbox to the event bus until stopped.
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
		Use:          "cryptodao-worker",
		Short:        "Governance outbox relay",
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
			fmt.Printf("cryptodao-worker version %s (build: %s)\n", version.Version, version.BuildTime)
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

	app, err := bootstrap.BuildWorker(bootstrap.Options{SeedFile: seedFile})
	if err != nil {
		return fmt.Errorf("bootstrap worker: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("worker shutdown close failed", "event", "worker_close_failed", "error", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
