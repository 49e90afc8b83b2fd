package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiereJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_MODELS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 720, cfg.JWT.Expiration)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.AI.ModelsCacheTTL)
	assert.Equal(t, time.Second, cfg.AI.RetryDelay)
	assert.Equal(t, 5, cfg.Inventory.LowStockThreshold)
	assert.EqualValues(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.DB.PreferIPv4)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_MODELS", " gpt-a , ,gpt-b ")
	t.Setenv("AI_RETRY_DELAY_MS", "250")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("DB_PREFER_IPV4", "true")
	t.Setenv("DB_MAX_CONNS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.APIKey())
	assert.Equal(t, []string{"gpt-a", "gpt-b"}, cfg.AI.Models)
	assert.Equal(t, 250*time.Millisecond, cfg.AI.RetryDelay)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.DB.PreferIPv4)
	assert.EqualValues(t, 8, cfg.DB.MaxConns)
}

func TestLoad_ModelosPorProveedor(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("AI_MODELS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultModels["anthropic"], cfg.AI.Models)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/pos?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
