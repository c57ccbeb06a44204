package main

import (
	"fmt"

	"github.com/danielvsantos/finance-dashboard/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		RunE:  runMigrate,
	}

	cmd.Flags().Bool("status", false, "print the current schema version without migrating")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	statusOnly, _ := cmd.Flags().GetBool("status")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if statusOnly {
		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if version == storage.ExpectedSchemaVersion {
			fmt.Println(formatSuccess(fmt.Sprintf("Schema version %d (up to date).", version)))
		} else {
			fmt.Println(formatWarning(fmt.Sprintf("Schema version %d, expected %d. Run \"findash migrate\".", version, storage.ExpectedSchemaVersion)))
		}
		return nil
	}

	before, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if before == storage.ExpectedSchemaVersion {
		fmt.Println(subtleStyle.Render("Schema already up to date."))
		return nil
	}

	fmt.Println(formatSuccess(fmt.Sprintf("Migrated schema from version %d to %d.", before, storage.ExpectedSchemaVersion)))
	return nil
}
