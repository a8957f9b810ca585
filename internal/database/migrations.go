package database

import (
	"fmt"
	"log/slog"
	"time"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const schemaVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);
`

// migrations contains all schema changes in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_projects_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS projects (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_reviews_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS reviews (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id INTEGER NOT NULL,
				title TEXT NOT NULL DEFAULT 'Untitled',
				content TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				source_url TEXT NOT NULL DEFAULT '',
				rating INTEGER,
				sentiment_score REAL NOT NULL DEFAULT 0,
				sentiment_label TEXT NOT NULL DEFAULT 'Neutral',
				sentiment_confidence REAL NOT NULL DEFAULT 0,
				positive_score REAL NOT NULL DEFAULT 0,
				negative_score REAL NOT NULL DEFAULT 0,
				neutral_score REAL NOT NULL DEFAULT 0,
				word_count INTEGER NOT NULL DEFAULT 0,
				readability_score REAL NOT NULL DEFAULT 0,
				keywords TEXT NOT NULL DEFAULT '[]',
				created_at INTEGER NOT NULL,
				analyzed_at INTEGER NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_replies_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS replies (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				review_id INTEGER NOT NULL,
				content TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				sentiment_score REAL NOT NULL DEFAULT 0,
				sentiment_label TEXT NOT NULL DEFAULT 'Neutral',
				sentiment_confidence REAL NOT NULL DEFAULT 0,
				positive_score REAL NOT NULL DEFAULT 0,
				negative_score REAL NOT NULL DEFAULT 0,
				neutral_score REAL NOT NULL DEFAULT 0,
				word_count INTEGER NOT NULL DEFAULT 0,
				keywords TEXT NOT NULL DEFAULT '[]',
				created_at INTEGER NOT NULL,
				analyzed_at INTEGER NOT NULL,
				FOREIGN KEY (review_id) REFERENCES reviews(id) ON DELETE CASCADE
			);
		`,
	},
	{
		Version: 4,
		Name:    "create_import_jobs_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS import_jobs (
				id TEXT PRIMARY KEY,
				project_id INTEGER NOT NULL,
				url TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'queued',
				review_id INTEGER,
				error TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
			);
		`,
	},
	{
		Version: 5,
		Name:    "create_indexes",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_reviews_project_id ON reviews(project_id);
			CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);
			CREATE INDEX IF NOT EXISTS idx_reviews_sentiment_label ON reviews(sentiment_label);
			CREATE INDEX IF NOT EXISTS idx_replies_review_id ON replies(review_id);
			CREATE INDEX IF NOT EXISTS idx_import_jobs_project_id ON import_jobs(project_id);
			CREATE INDEX IF NOT EXISTS idx_import_jobs_status ON import_jobs(status);
		`,
	},
}

// Migrate applies all pending migrations, each in its own transaction.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration",
			slog.Int("version", migration.Version),
			slog.String("name", migration.Name))

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
			migration.Version, time.Now().Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
