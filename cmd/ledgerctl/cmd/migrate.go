package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	envconfig "github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/platform/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the SQLite schema",
	Long: `Create the SQLite tables and indexes that do not exist yet.
Running it again is harmless. DynamoDB tables are provisioned outside ledgerctl.

Example:
  SQLITE_PATH=./data/ledger.db ledgerctl migrate`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.StorageDriver != envconfig.StorageSQLite {
		return fmt.Errorf("migrate only applies to the sqlite driver, STORAGE_DRIVER is %q", cfg.StorageDriver)
	}

	conn, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	slog.Info("Schema is up to date", "path", conn.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", conn.Path())
	return nil
}
