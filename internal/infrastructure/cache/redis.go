package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
)

var _ ports.ModelCache = (*RedisModelCache)(nil)

// NewRedis crea el cliente a partir de REDIS_URL y valida la conexión.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: url inválida: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// RedisModelCache comparte la lista de modelos entre réplicas. La expiración la maneja Redis (SET con TTL).
type RedisModelCache struct {
	rdb *redis.Client
	key string
	log zerolog.Logger
}

// NewRedisModelCache usa la clave "ai:models:<provider>".
func NewRedisModelCache(rdb *redis.Client, provider string, log zerolog.Logger) *RedisModelCache {
	return &RedisModelCache{rdb: rdb, key: "ai:models:" + provider, log: log}
}

// Get devuelve (nil, false) ante ausencia o cualquier error; un fallo de Redis no debe bloquear el asesor.
func (c *RedisModelCache) Get(ctx context.Context) ([]string, bool) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", c.key).Msg("redis: leer caché de modelos")
		}
		return nil, false
	}
	var models []string
	if err := json.Unmarshal(raw, &models); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("redis: caché de modelos corrupta")
		return nil, false
	}
	return models, true
}

func (c *RedisModelCache) Set(ctx context.Context, models []string, ttl time.Duration) error {
	raw, err := json.Marshal(models)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: guardar caché de modelos: %w", err)
	}
	return nil
}
