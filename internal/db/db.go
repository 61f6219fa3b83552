package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with eventgov-specific helpers.
type DB struct {
	*sql.DB
	mu   sync.RWMutex
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS scan_runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL DEFAULT (datetime('now')),
    finished_at DATETIME,
    repos TEXT NOT NULL DEFAULT '[]',
    service_count INTEGER NOT NULL DEFAULT 0,
    event_count INTEGER NOT NULL DEFAULT 0,
    orphan_count INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'running' CHECK(status IN ('running','completed','failed'))
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at);

CREATE TABLE IF NOT EXISTS service_facts (
    id TEXT PRIMARY KEY,
    scan_id TEXT NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
    service_id TEXT NOT NULL,
    repository TEXT NOT NULL DEFAULT '',
    service TEXT NOT NULL DEFAULT '',
    published TEXT NOT NULL DEFAULT '[]',
    consumed TEXT NOT NULL DEFAULT '[]',
    topics TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(scan_id, service_id)
);

CREATE INDEX IF NOT EXISTS idx_service_facts_scan ON service_facts(scan_id);
CREATE INDEX IF NOT EXISTS idx_service_facts_service ON service_facts(service_id);

CREATE TABLE IF NOT EXISTS event_flows (
    id TEXT PRIMARY KEY,
    scan_id TEXT NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
    event_name TEXT NOT NULL,
    publishers TEXT NOT NULL DEFAULT '[]',
    consumers TEXT NOT NULL DEFAULT '[]',
    is_orphaned INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(scan_id, event_name)
);

CREATE INDEX IF NOT EXISTS idx_event_flows_scan ON event_flows(scan_id);
CREATE INDEX IF NOT EXISTS idx_event_flows_name ON event_flows(event_name);
CREATE INDEX IF NOT EXISTS idx_event_flows_orphaned ON event_flows(is_orphaned);

CREATE TABLE IF NOT EXISTS schema_registrations (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    event_name TEXT NOT NULL,
    schema_id INTEGER NOT NULL,
    registered_at DATETIME NOT NULL DEFAULT (datetime('now')),
    registry_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_registrations_subject ON schema_registrations(subject);
`
