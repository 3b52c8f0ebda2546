//go:build integration

package snapshot

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	runContract(t, NewRedis(client, "medichart-test"))
}

func TestRedisSurvivesReconnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	first, err := OpenRedis(ctx, url, "medichart-test")
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, KeyUsers, []byte(`[]`)))
	require.NoError(t, first.Close())

	second, err := OpenRedis(ctx, url, "medichart-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	blob, ok, err := second.Load(ctx, KeyUsers)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`[]`), blob)
}
