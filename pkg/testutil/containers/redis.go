//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"gatehouse/internal/platform/config"
	platformredis "gatehouse/internal/platform/redis"
)

// RedisContainer is a throwaway Redis reached through the same client the
// server builds from REDIS_URL.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *platformredis.Client
}

// NewRedisContainer starts Redis. The shared Manager owns its lifetime, so no
// t.Cleanup is registered here.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis container")

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "redis connection string")
	}

	client, err := platformredis.New(config.RedisConfig{URL: url})
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "connect to redis container")
	}

	return &RedisContainer{Container: container, URL: url, Client: client}
}

// FlushAll drops every key so suites start from an empty keyspace.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
