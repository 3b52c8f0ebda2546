package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"medichart/pkg/platform/sentinel"
)

// SQLite stores snapshots in a local database file, same schema as the
// postgres backend. Zero-dependency deployment for single-node installs.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// OpenSQLite opens (creating if needed) the database file and ensures the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The driver is not safe for concurrent writers on one connection pool
	// beyond SQLite's own locking; a single connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store := NewSQLite(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			blob TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM snapshots WHERE name = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite load %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return []byte(blob), true, nil
}

func (s *SQLite) Save(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, blob, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT (name) DO UPDATE SET blob = excluded.blob, updated_at = datetime('now')`,
		key, string(blob))
	if err != nil {
		return fmt.Errorf("sqlite save %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
