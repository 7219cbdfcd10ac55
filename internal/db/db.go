// Package db keeps the run-scoped usage history in an in-memory database
package db

import (
	"context"
	"database/sql"
	"fmt"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
// The database lives in memory and holds only the current run; nothing is
// written to disk and nothing survives a restart.
type DB struct {
	*sql.DB
	name string
}

// New opens a named in-memory database and initializes the schema. The
// shared cache keeps the database alive across pooled connections for the
// lifetime of the process.
func New(name string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection sidesteps shared-cache table locks.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		name: name,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Name returns the database name used in the DSN.
func (db *DB) Name() string {
	return db.name
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createUsageSamplesTable(); err != nil {
		return err
	}
	return db.createSessionBlocksTable()
}

func (db *DB) createUsageSamplesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS usage_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		total_units INTEGER NOT NULL DEFAULT 0,
		ceiling INTEGER NOT NULL DEFAULT 0,
		units_per_minute REAL NOT NULL DEFAULT 0,
		usage_fraction REAL,
		freshness TEXT NOT NULL DEFAULT 'live',
		outcome TEXT NOT NULL DEFAULT 'success'
	);
	CREATE INDEX IF NOT EXISTS idx_usage_samples_timestamp ON usage_samples(timestamp);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createSessionBlocksTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS session_blocks (
		block_id TEXT PRIMARY KEY,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		last_seen DATETIME NOT NULL,
		total_units INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 0,
		is_gap INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_session_blocks_start ON session_blocks(start_time);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection. The in-memory database is discarded
// with it.
func (db *DB) Close() error {
	return db.DB.Close()
}
