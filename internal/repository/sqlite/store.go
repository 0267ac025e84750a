// Package sqlite provides an embedded user store for single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		role          TEXT NOT NULL DEFAULT 'USER',
		first_name    TEXT,
		last_name     TEXT,
		bio           TEXT,
		avatar_url    TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);`

// Store owns the sqlite database handle.
type Store struct {
	db *sql.DB
}

// Open opens the database at path (":memory:" for a private in-memory database)
// and creates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps an in-memory database shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init users table schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
