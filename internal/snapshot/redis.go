package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"medichart/pkg/platform/sentinel"
)

// Redis stores each collection blob under a prefixed key. Suitable when the
// service runs alongside an existing Redis deployment.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "medichart"
	}
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to the given URL and pings it before returning.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedis(client, prefix), nil
}

func (r *Redis) key(key string) string {
	return r.prefix + ":" + key
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis load %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return blob, true, nil
}

func (r *Redis) Save(ctx context.Context, key string, blob []byte) error {
	if err := r.client.Set(ctx, r.key(key), blob, 0).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }
