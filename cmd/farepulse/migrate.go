package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkamanzi/farepulse/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command that touches the database migrates automatically, so
this mostly exists for checking state with --status and for
pre-warming a fresh database in provisioning scripts.`,
		RunE: runMigrate,
	}

	// Flags
	cmd.Flags().Bool("status", false, "show schema versions without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	statusOnly, _ := cmd.Flags().GetBool("status")

	dbPath := databasePath()

	// Open without the usual auto-migrate so --status reports the
	// version actually on disk.
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore(store)

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if statusOnly {
		slog.Info("📊 Database migration status",
			"database", dbPath,
			"current_version", current,
			"latest_version", storage.ExpectedSchemaVersion)
		if current == storage.ExpectedSchemaVersion {
			slog.Info("✅ Schema is up to date")
		} else {
			slog.Warn("Schema is behind, run 'farepulse migrate'",
				"pending", storage.ExpectedSchemaVersion-current)
		}
		return nil
	}

	slog.Info("🗄️  Running database migrations...", "database", dbPath, "from_version", current)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	applied, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	slog.Info("✅ Database migrations completed successfully!", "version", applied)
	return nil
}
