// Package storage provides SQLite persistence for the diagnostics
// audit log.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
}

// Open creates (or opens) the audit database under dataDir. Callers
// own the returned handle; tests open isolated instances in temp
// directories.
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "netscan.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	wrapped := &DB{DB: db}
	if err := wrapped.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return wrapped, nil
}

func (db *DB) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tool TEXT NOT NULL,
			target TEXT NOT NULL,
			identity TEXT NOT NULL,
			tier TEXT NOT NULL,
			success INTEGER NOT NULL,
			cached INTEGER DEFAULT 0,
			error TEXT,
			duration_ms REAL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_identity ON audit_log(identity)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_tool ON audit_log(tool)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
