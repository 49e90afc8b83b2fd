package ai

import (
	"github.com/jhoicas/inventario-pos/internal/application/ports"
	"github.com/jhoicas/inventario-pos/pkg/config"
)

// NewFromConfig devuelve el generador del proveedor configurado, o nil si falta la API key.
func NewFromConfig(cfg config.AIConfig) ports.TextGenerator {
	key := cfg.APIKey()
	if key == "" {
		return nil
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIGenerator(key, "", cfg.Timeout)
	case "anthropic":
		return NewAnthropicGenerator(key, "", cfg.Timeout)
	default:
		return NewGeminiGenerator(key, "", cfg.Timeout)
	}
}
