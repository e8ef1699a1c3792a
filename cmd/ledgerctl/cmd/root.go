// Package cmd provides the ledgerctl commands.
package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirosato/finance-ledger/backend/internal/app"
	envconfig "github.com/hirosato/finance-ledger/backend/internal/common/config"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate the finance ledger storage",
	Long: `ledgerctl runs maintenance tasks against the storage configured by
STORAGE_DRIVER (dynamodb, sqlite or memory).

Example:
  ledgerctl migrate
  ledgerctl seed-categories
  ledgerctl audit --owner user-123`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default is .env when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCategoriesCmd)
	rootCmd.AddCommand(auditCmd)
}

func loadConfig() (*envconfig.Config, error) {
	if envFile != "" {
		return envconfig.LoadFromEnv(envFile)
	}
	return envconfig.LoadFromEnv()
}

// openApp loads the configuration and opens the configured storage
func openApp(ctx context.Context) (*envconfig.Config, *app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	application, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return cfg, application, nil
}
