// Package cache implementa ports.ModelCache en memoria del proceso y en Redis.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
)

var _ ports.ModelCache = (*MemoryModelCache)(nil)

// MemoryModelCache lista de modelos con expiración, protegida por mutex.
type MemoryModelCache struct {
	mu        sync.RWMutex
	models    []string
	expiresAt time.Time
	now       func() time.Time
}

func NewMemoryModelCache() *MemoryModelCache {
	return &MemoryModelCache{now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (c *MemoryModelCache) WithClock(now func() time.Time) *MemoryModelCache {
	c.now = now
	return c
}

func (c *MemoryModelCache) Get(context.Context) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.models == nil || !c.now().Before(c.expiresAt) {
		return nil, false
	}
	out := make([]string, len(c.models))
	copy(out, c.models)
	return out, true
}

func (c *MemoryModelCache) Set(_ context.Context, models []string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = append(make([]string, 0, len(models)), models...)
	c.expiresAt = c.now().Add(ttl)
	return nil
}
