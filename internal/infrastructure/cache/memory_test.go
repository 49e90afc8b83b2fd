package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/infrastructure/cache"
)

func TestMemoryModelCache_Expires(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	c := cache.NewMemoryModelCache().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, []string{"a", "b"}, 30*time.Minute))
	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	now = now.Add(30 * time.Minute)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryModelCache_EmptyListIsCached(t *testing.T) {
	c := cache.NewMemoryModelCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, nil, time.Minute))
	got, ok := c.Get(ctx)

	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestMemoryModelCache_ReturnsCopy(t *testing.T) {
	c := cache.NewMemoryModelCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, []string{"a"}, time.Minute))

	got, _ := c.Get(ctx)
	got[0] = "x"

	again, _ := c.Get(ctx)
	assert.Equal(t, []string{"a"}, again)
}
