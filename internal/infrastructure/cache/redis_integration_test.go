//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/inventario-pos/internal/infrastructure/cache"
)

func TestRedisModelCache(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := cache.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := cache.NewRedisModelCache(rdb, "gemini", zerolog.Nop())

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, []string{"gemini-1.5-flash"}, 2*time.Second))
	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"gemini-1.5-flash"}, got)

	ttl, err := rdb.TTL(ctx, "ai:models:gemini").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
