package ports

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Tipos de fallo que un backend de IA reporta al asesor.
// El asesor decide reintento, salto de modelo o corte según el tipo, nunca por el texto del error.
var (
	ErrRateLimited   = errors.New("ia: cuota o límite de peticiones agotado")
	ErrAuth          = errors.New("ia: credenciales o facturación rechazadas")
	ErrUnavailable   = errors.New("ia: servicio no disponible")
	ErrNotConfigured = errors.New("ia: no configurada")
)

// GenerationError error tipado devuelto por un TextGenerator.
// Kind es uno de ErrRateLimited, ErrAuth o ErrUnavailable; errors.Is(err, Kind) funciona vía Unwrap.
type GenerationError struct {
	Kind       error
	Model      string
	StatusCode int   // HTTP del proveedor si aplica
	Err        error // causa original
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v (modelo %s, http %d): %v", e.Kind, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%v (modelo %s, http %d)", e.Kind, e.Model, e.StatusCode)
}

func (e *GenerationError) Unwrap() error { return e.Kind }

// ClassifyStatus traduce un código HTTP del proveedor al tipo de fallo.
func ClassifyStatus(status int) error {
	switch {
	case status == 429:
		return ErrRateLimited
	case status == 401 || status == 402 || status == 403:
		return ErrAuth
	default:
		return ErrUnavailable
	}
}

// GenerationRequest parámetros de una generación de texto.
type GenerationRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// TextGenerator puerto de salida hacia un proveedor de modelos de lenguaje (Gemini, OpenAI, Anthropic).
// Siguiendo DIP, el asesor solo conoce este contrato.
type TextGenerator interface {
	// Provider nombre corto del proveedor (gemini, openai, anthropic).
	Provider() string
	// ListModels devuelve los ids de modelos que la cuenta puede usar para generar texto.
	ListModels(ctx context.Context) ([]string, error)
	// Generate produce texto con el modelo indicado. Los fallos del proveedor son *GenerationError.
	Generate(ctx context.Context, model string, req GenerationRequest) (string, error)
}

// ModelCache guarda la lista de modelos utilizables con expiración.
type ModelCache interface {
	Get(ctx context.Context) ([]string, bool)
	Set(ctx context.Context, models []string, ttl time.Duration) error
}
