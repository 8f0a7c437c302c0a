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
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// A global synonym is stored with user_id = '' rather than NULL so the
// UNIQUE(user_id, keyword) constraint and its ON CONFLICT upserts behave
// the same for personal and global rows.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Synonyms table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS synonyms (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL DEFAULT '',
					keyword TEXT NOT NULL,
					category_id TEXT,
					category_name TEXT NOT NULL,
					sub_category_id TEXT,
					sub_category_name TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					usage_count INTEGER NOT NULL DEFAULT 0,
					source TEXT NOT NULL,
					last_used_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, keyword)
				)`,
				`CREATE INDEX idx_synonyms_keyword ON synonyms(keyword)`,
				`CREATE INDEX idx_synonyms_user ON synonyms(user_id)`,
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
		Description: "Search logs table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS search_logs (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					query TEXT NOT NULL,
					normalized_query TEXT NOT NULL,
					matches TEXT,
					best_category TEXT,
					best_score REAL NOT NULL DEFAULT 0,
					threshold REAL NOT NULL DEFAULT 0,
					success INTEGER NOT NULL DEFAULT 0,
					mode TEXT NOT NULL,
					response_time_ms INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_search_logs_user ON search_logs(user_id)`,
				`CREATE INDEX idx_search_logs_created ON search_logs(created_at)`,
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
		Version:     3,
		Description: "Search log flow tracking columns",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE search_logs ADD COLUMN flow_step INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE search_logs ADD COLUMN total_steps INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE search_logs ADD COLUMN ai_provider TEXT`,
				`ALTER TABLE search_logs ADD COLUMN ai_model TEXT`,
				`ALTER TABLE search_logs ADD COLUMN ai_confidence REAL NOT NULL DEFAULT 0`,
				`ALTER TABLE search_logs ADD COLUMN final_category TEXT`,
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

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
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

	// Verify we're at the expected schema version
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
