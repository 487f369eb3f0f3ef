package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schemas = map[Dialect][]string{
	Postgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id            SERIAL PRIMARY KEY,
			username      VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id         SERIAL PRIMARY KEY,
			user_id    INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			text       TEXT NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)`,
	},
	SQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			text       TEXT NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)`,
	},
}

// CreateTableIfNotExists creates the users and tasks tables for the dialect.
func CreateTableIfNotExists(ctx context.Context, db *sql.DB, dialect Dialect) error {
	queries, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", dialect)
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// DeleteAllTable drops both tables. Tests use it to reset a shared database.
func DeleteAllTable(ctx context.Context, db *sql.DB) error {
	for _, query := range []string{
		"DROP TABLE IF EXISTS tasks",
		"DROP TABLE IF EXISTS users",
	} {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}

	return nil
}
