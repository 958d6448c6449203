package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: records and classifications",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS records (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					source TEXT NOT NULL,
					author_id TEXT NOT NULL,
					raw_text TEXT NOT NULL,
					title TEXT,
					url TEXT,
					language TEXT NOT NULL DEFAULT 'en',
					timestamp DATETIME NOT NULL,
					collected_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_records_timestamp ON records(timestamp)`,
				`CREATE INDEX idx_records_source ON records(source)`,

				`CREATE TABLE IF NOT EXISTS classifications (
					record_id TEXT PRIMARY KEY,
					sentiment TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					topics TEXT,
					misinfo_flag INTEGER NOT NULL DEFAULT 0,
					model_version TEXT NOT NULL,
					classified_at DATETIME NOT NULL,
					FOREIGN KEY (record_id) REFERENCES records(id)
				)`,
				`CREATE INDEX idx_classifications_sentiment ON classifications(sentiment)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Collection run audit trail",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS collection_runs (
					id TEXT PRIMARY KEY,
					started_at DATETIME NOT NULL,
					finished_at DATETIME NOT NULL,
					since DATETIME NOT NULL,
					results TEXT NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Misinformation flag review queue",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS flag_reviews (
					record_id TEXT PRIMARY KEY,
					status TEXT NOT NULL DEFAULT 'PENDING',
					notes TEXT,
					reviewed_at DATETIME,
					FOREIGN KEY (record_id) REFERENCES records(id)
				)`,
				`CREATE INDEX idx_flag_reviews_status ON flag_reviews(status)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Index classifications by flag for review queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_classifications_misinfo ON classifications(misinfo_flag)`)
			return err
		},
	},
}

// Migrate applies all pending migrations to the database.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if current >= ExpectedSchemaVersion {
		slog.Debug("Database schema is up to date", "version", current)
		return nil
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		// PRAGMA does not support placeholders
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
