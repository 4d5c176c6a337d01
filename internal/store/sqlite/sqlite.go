// Package sqlite provides a SQLite-backed implementation of the
// store.KV contract.
//
// The whole ledger is one table: canonical key text mapped to a JSON
// value blob. That mirrors the logical model of one store with many
// record kinds distinguished by tagged keys, and keeps the schema
// trivial.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/splitpot/splitpot/internal/store"
)

// Ensure Store implements store.KV.
var _ store.KV = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    k TEXT PRIMARY KEY,
    v BLOB NOT NULL
);
`

// Store implements store.KV on a single SQLite table.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at dbPath and ensures
// the schema exists. Parent directories are created automatically.
// Pass ":memory:" for an ephemeral database.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers from blocking the single writer.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored at key, or ok=false if absent.
func (s *Store) Get(ctx context.Context, key store.Key) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, "SELECT v FROM kv WHERE k = ?", key.String()).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value at key, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key store.Key, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
		key.String(), value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes the value at key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key store.Key) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE k = ?", key.String())
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
