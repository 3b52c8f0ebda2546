package snapshot

import (
	"context"
	"fmt"
)

// Options selects and configures a snapshot backend.
type Options struct {
	Backend     string // memory | filesystem | redis | postgres | sqlite
	Dir         string // filesystem root
	RedisURL    string
	RedisPrefix string
	PostgresDSN string
	SQLitePath  string
}

// Open constructs the configured backend. The returned close function is a
// no-op for backends without a connection to release. Call sites should
// depend on the Store interface, not the concrete type.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Backend {
	case "", "memory":
		return NewMemory(), noop, nil
	case "filesystem":
		fs, err := NewFilesystem(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	case "redis":
		r, err := OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case "postgres":
		p, err := OpenPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", opts.Backend)
	}
}
