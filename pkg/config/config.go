package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Redis     RedisConfig
	AI        AIConfig
	Inventory InventoryConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase/Render).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
	MaxConns    int32
	PreferIPv4  bool // dial por IPv4 (contenedores sin salida IPv6)
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
// Los proveedores que entregan "postgres://" se aceptan tal cual (pgx soporta ambos esquemas).
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string // lista separada por comas
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión opcional a Redis (caché compartida entre réplicas).
type RedisConfig struct {
	URL string
}

// AIConfig configuración del asesor de IA. Se pasa explícitamente al construir el adaptador.
type AIConfig struct {
	Provider        string // gemini | openai | anthropic
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Models          []string // orden de preferencia
	ModelsCacheTTL  time.Duration
	RetryDelay      time.Duration
	Timeout         time.Duration
}

// APIKey devuelve la clave del proveedor seleccionado.
func (c AIConfig) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// InventoryConfig umbrales de reportes.
type InventoryConfig struct {
	LowStockThreshold int
	ZombieDays        int
}

// defaultModels preferencia por proveedor cuando AI_MODELS no está definido.
var defaultModels = map[string][]string{
	"gemini":    {"gemini-1.5-flash", "gemini-1.5-flash-8b", "gemini-2.0-flash-lite"},
	"openai":    {"gpt-4o-mini", "gpt-4o"},
	"anthropic": {"claude-3-5-haiku-20241022", "claude-3-5-sonnet-20241022"},
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Orden: .env (godotenv, no pisa variables ya exportadas) → config.yaml → env vars.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignoramos error si no existe .env

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	provider := strings.ToLower(getString(v, "AI_PROVIDER", "gemini"))
	models := splitList(getString(v, "AI_MODELS", ""))
	if len(models) == 0 {
		models = defaultModels[provider]
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-pos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "inventario_pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
			PreferIPv4:  getBool(v, "DB_PREFER_IPV4", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60*12),
			Issuer:     getString(v, "JWT_ISSUER", "inventario-pos"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"),
		},
		Redis: RedisConfig{
			URL: getString(v, "REDIS_URL", ""),
		},
		AI: AIConfig{
			Provider:        provider,
			GeminiAPIKey:    getString(v, "GEMINI_API_KEY", ""),
			OpenAIAPIKey:    getString(v, "OPENAI_API_KEY", ""),
			AnthropicAPIKey: getString(v, "ANTHROPIC_API_KEY", ""),
			Models:          models,
			ModelsCacheTTL:  time.Duration(getInt(v, "AI_MODELS_CACHE_TTL_MINUTES", 30)) * time.Minute,
			RetryDelay:      time.Duration(getInt(v, "AI_RETRY_DELAY_MS", 1000)) * time.Millisecond,
			Timeout:         time.Duration(getInt(v, "AI_TIMEOUT_SECONDS", 20)) * time.Second,
		},
		Inventory: InventoryConfig{
			LowStockThreshold: getInt(v, "LOW_STOCK_THRESHOLD", 5),
			ZombieDays:        getInt(v, "ZOMBIE_DAYS", 30),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
