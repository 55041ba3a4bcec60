package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS work_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			parent_id TEXT,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			template_type TEXT NOT NULL,
			due_date TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_work_items_user_due
			ON work_items (user_id, due_date);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (item_id) REFERENCES work_items(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_item
			ON blocks (item_id, sort_order);`,
		`CREATE TABLE IF NOT EXISTS day_notes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			due_date TEXT NOT NULL,
			issue TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (user_id, due_date)
		);`,
		`CREATE TABLE IF NOT EXISTS file_assets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			original_name TEXT NOT NULL,
			stored_name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (item_id) REFERENCES work_items(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_file_assets_stored
			ON file_assets (stored_name);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
