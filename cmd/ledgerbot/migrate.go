package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evanko/ledgerbot/internal/category"
	"github.com/evanko/ledgerbot/internal/common"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version and
seed the default categories.

This command ensures your local database has all the required
tables and indexes for the application to function properly.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("skip-seed", false, "Skip seeding the default categories")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	skipSeed, _ := cmd.Flags().GetBool("skip-seed")

	common.LogInfo("Starting database migration", common.Fields{
		"database":  viper.GetString("database.path"),
		"skip_seed": skipSeed,
	})

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if !skipSeed {
		if err := category.NewService(store).EnsureDefaults(ctx); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	common.LogInfo("Migration completed successfully", nil)
	return nil
}
