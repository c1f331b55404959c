package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate ensures the subjects, sessions and active_sessions tables exist.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, stmt := range migrationStatements(dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func migrationStatements(dialect Dialect) []string {
	if dialect == MySQL {
		return []string{
			`CREATE TABLE IF NOT EXISTS subjects (
				id VARCHAR(64) PRIMARY KEY,
				owner_id VARCHAR(64) NOT NULL,
				name VARCHAR(255) NOT NULL,
				color VARCHAR(16) NOT NULL,
				image TEXT NOT NULL,
				created_at VARCHAR(32) NOT NULL,
				INDEX idx_subjects_owner (owner_id, created_at)
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id VARCHAR(64) PRIMARY KEY,
				owner_id VARCHAR(64) NOT NULL,
				subject_id VARCHAR(64) NOT NULL,
				start_time VARCHAR(32) NOT NULL,
				end_time VARCHAR(32) NOT NULL,
				description TEXT NOT NULL,
				is_interrupted INTEGER NOT NULL,
				created_at VARCHAR(32) NOT NULL,
				INDEX idx_sessions_owner_start (owner_id, start_time)
			)`,
			`CREATE TABLE IF NOT EXISTS active_sessions (
				id VARCHAR(64) PRIMARY KEY,
				owner_id VARCHAR(64) NOT NULL,
				subject_id VARCHAR(64) NOT NULL,
				start_time VARCHAR(32) NOT NULL,
				status VARCHAR(16) NOT NULL,
				updated_at VARCHAR(32) NOT NULL,
				INDEX idx_active_sessions_owner (owner_id, status)
			)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS subjects (
			id VARCHAR(64) PRIMARY KEY,
			owner_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			color VARCHAR(16) NOT NULL,
			image TEXT NOT NULL,
			created_at VARCHAR(32) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_owner ON subjects(owner_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) PRIMARY KEY,
			owner_id VARCHAR(64) NOT NULL,
			subject_id VARCHAR(64) NOT NULL,
			start_time VARCHAR(32) NOT NULL,
			end_time VARCHAR(32) NOT NULL,
			description TEXT NOT NULL,
			is_interrupted INTEGER NOT NULL,
			created_at VARCHAR(32) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_owner_start ON sessions(owner_id, start_time)`,
		`CREATE TABLE IF NOT EXISTS active_sessions (
			id VARCHAR(64) PRIMARY KEY,
			owner_id VARCHAR(64) NOT NULL,
			subject_id VARCHAR(64) NOT NULL,
			start_time VARCHAR(32) NOT NULL,
			status VARCHAR(16) NOT NULL,
			updated_at VARCHAR(32) NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_active_sessions_running ON active_sessions(owner_id) WHERE status = 'running'`,
	}
}
