package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"dashboard-session-core/role"
)

// SQLiteStore is a file-backed Store. One row per role; the schema is created
// on open. Reads that fail report "no token" so a corrupt or locked file
// degrades to logged-out rather than erroring startup.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS role_tokens (
	role  TEXT PRIMARY KEY,
	token TEXT NOT NULL
);`

// OpenSQLiteStore opens (creating if needed) the token database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("tokenstore: database path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: open %s: %w", path, err)
	}
	// Single writer; the four role slots are independent rows.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("tokenstore: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Set stores token for r, replacing any previous token.
func (s *SQLiteStore) Set(ctx context.Context, r role.Role, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO role_tokens (role, token) VALUES (?, ?)
		 ON CONFLICT(role) DO UPDATE SET token = excluded.token`,
		string(r), token)
	if err != nil {
		return fmt.Errorf("tokenstore: set %s: %w", r, err)
	}
	return nil
}

// Get returns the token for r if present and non-empty. Read failures are
// logged and reported as absent.
func (s *SQLiteStore) Get(ctx context.Context, r role.Role) (string, bool) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM role_tokens WHERE role = ?`, string(r)).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		log.Printf("tokenstore: read %s failed, treating as logged out: %v", r, err)
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// Clear removes the token for r.
func (s *SQLiteStore) Clear(ctx context.Context, r role.Role) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM role_tokens WHERE role = ?`, string(r)); err != nil {
		return fmt.Errorf("tokenstore: clear %s: %w", r, err)
	}
	return nil
}

// ClearAll removes every role's token.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM role_tokens`); err != nil {
		return fmt.Errorf("tokenstore: clear all: %w", err)
	}
	return nil
}
