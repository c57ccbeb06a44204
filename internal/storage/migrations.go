package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					country TEXT NOT NULL,
					currency TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					pl_macro_category TEXT,
					pl_category TEXT,
					type TEXT,
					category_group TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					year INTEGER NOT NULL,
					quarter INTEGER NOT NULL,
					month INTEGER NOT NULL,
					day INTEGER NOT NULL,
					description TEXT,
					credit REAL NOT NULL DEFAULT 0,
					debit REAL NOT NULL DEFAULT 0,
					currency TEXT NOT NULL,
					account_id TEXT NOT NULL,
					category_id TEXT,
					card TEXT,
					ticker TEXT,
					shares REAL,
					price REAL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (account_id) REFERENCES accounts(id),
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
				`CREATE INDEX idx_transactions_year ON transactions(year)`,
				`CREATE INDEX idx_transactions_year_month ON transactions(year, month)`,

				`CREATE TABLE IF NOT EXISTS currency_rates (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					currency_from TEXT NOT NULL,
					currency_to TEXT NOT NULL,
					value REAL NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(year, month, currency_from, currency_to)
				)`,

				`CREATE TABLE IF NOT EXISTS analytics_cache (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					currency TEXT NOT NULL,
					country TEXT NOT NULL,
					macro_category TEXT NOT NULL,
					revenue REAL NOT NULL DEFAULT 0,
					expenses REAL NOT NULL DEFAULT 0,
					breakdown TEXT NOT NULL DEFAULT '{}',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(year, month, currency, country, macro_category)
				)`,
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
		Description: "Add original-currency shadow totals to analytics cache",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE analytics_cache ADD COLUMN revenue_original REAL NOT NULL DEFAULT 0`,
				`ALTER TABLE analytics_cache ADD COLUMN expenses_original REAL NOT NULL DEFAULT 0`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Optimize lookup indexes for rate resolution and cache queries",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_currency_rates_year ON currency_rates(year)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_currency ON transactions(year, month, currency)`,
				`CREATE INDEX IF NOT EXISTS idx_analytics_cache_currency ON analytics_cache(currency, year)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
