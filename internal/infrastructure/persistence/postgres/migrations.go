package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    telegram_id BIGINT PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL DEFAULT 'Student',
    mid1 DOUBLE PRECISION NOT NULL DEFAULT 0,
    mid2 DOUBLE PRECISION NOT NULL DEFAULT 0,
    weekly TEXT NOT NULL DEFAULT '',          -- comma-separated weekly marks
    last_internals DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

// migrations lists all migrations in order.
var migrations = []struct {
	Version int
	Name    string
	Up      string
}{
	{Version: 1, Name: "create_students", Up: migration001Up},
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migrator applies schema migrations on startup.
type Migrator struct {
	conn *Connection
}

// NewMigrator creates a new Migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn}
}

// Migrate applies all pending migrations. Already-applied migrations are
// skipped based on the schema_migrations bookkeeping table.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		if _, err := m.conn.Exec(ctx, mig.Up); err != nil {
			return fmt.Errorf("%w: %s (version %d): %v", ErrMigrationFailed, mig.Name, mig.Version, err)
		}

		_, err := m.conn.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			mig.Version, mig.Name,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to record %s: %v", ErrMigrationFailed, mig.Name, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the bookkeeping table if missing.
func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: failed to create schema_migrations: %v", ErrMigrationFailed, err)
	}
	return nil
}

// appliedVersions returns the set of already-applied migration versions.
func (m *Migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read schema_migrations: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: failed to scan version: %v", ErrMigrationFailed, err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
