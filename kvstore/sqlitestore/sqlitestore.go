// Package sqlitestore keeps client state in a local SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS client_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
)`

type Store struct {
	db *sql.DB
}

var _ kvstore.Store = (*Store)(nil)

// Open opens (creating when needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "sqlitestore.Open")
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlitestore.Open schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", kvstore.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "sqlitestore.Get")
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	return errors.Wrap(err, "sqlitestore.Set")
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key)
	return errors.Wrap(err, "sqlitestore.Delete")
}

func (s *Store) Close() error {
	return s.db.Close()
}
