package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var seedCategoriesCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Create the default categories",
	Long: `Create the built-in income and expense categories shared by every
owner. Categories that already exist are left untouched.

Example:
  ledgerctl seed-categories`,
	RunE: runSeedCategories,
}

func runSeedCategories(cmd *cobra.Command, args []string) error {
	_, application, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.Categories.SeedDefaults(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	slog.Info("Default categories seeded", "created", result.Created, "existing", result.Existing)
	fmt.Fprintf(cmd.OutOrStdout(), "created %d, already present %d\n", result.Created, result.Existing)
	return nil
}
