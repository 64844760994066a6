// Package database provides the durable local copy of the account
// aggregate over sqlx. SQLite is the default; setting DATABASE_URL switches
// to PostgreSQL.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database and bootstraps the schema. With no
// DATABASE_URL a SQLite file is created under the data directory.
func Connect() (*sqlx.DB, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := sqlx.Connect("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
		return db, initializeSchema(db)
	}

	dataDir := os.Getenv("KIDQUEST_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "kidquest.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %v", err)
	}

	return db, initializeSchema(db)
}

// initializeSchema creates the aggregate tables if they don't exist.
func initializeSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			name TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			coins INTEGER NOT NULL DEFAULT 0,
			fragments INTEGER NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 1,
			last_streak_day TEXT NOT NULL DEFAULT '',
			push_start_hour INTEGER NOT NULL DEFAULT 19,
			push_end_hour INTEGER NOT NULL DEFAULT 21,
			daily_limit INTEGER NOT NULL DEFAULT 10,
			task_probabilities TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS library (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			reward INTEGER NOT NULL,
			flashcard TEXT,
			memory_level INTEGER NOT NULL DEFAULT 0,
			next_review TIMESTAMP NOT NULL,
			cycle_mode TEXT NOT NULL DEFAULT 'ebbinghaus',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			reward INTEGER NOT NULL,
			flashcard TEXT,
			library_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS collection (
			word TEXT PRIMARY KEY,
			unlocked_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
