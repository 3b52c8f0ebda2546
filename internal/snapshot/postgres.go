package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"medichart/pkg/platform/sentinel"
)

// Postgres stores snapshots in a single key-value table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects with the pgx stdlib driver and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	store := NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			blob TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var blob string
	err := p.db.QueryRowContext(ctx,
		`SELECT blob FROM snapshots WHERE name = $1`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres load %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return []byte(blob), true, nil
}

func (p *Postgres) Save(ctx context.Context, key string, blob []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, blob, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET blob = EXCLUDED.blob, updated_at = now()`,
		key, string(blob))
	if err != nil {
		return fmt.Errorf("postgres save %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }
