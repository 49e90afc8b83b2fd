// Package insight genera recomendaciones de negocio con un modelo de lenguaje externo.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
)

// Mensajes que ve el usuario final.
const (
	MsgNotConfigured = "Error: IA no configurada."
	MsgSaturated     = "El sistema está saturado. Intenta en 1 minuto."
	msgAccountFmt    = "Error de cuenta %s (Cuota/Pago)."
	msgEmpty         = "Sin respuesta."
)

// Resultados de un intento para métricas.
const (
	AttemptSuccess     = "success"
	AttemptRateLimited = "rate_limited"
	AttemptAuth        = "auth"
	AttemptFailed      = "failed"
)

// Config parámetros explícitos del asesor (nada se lee del entorno aquí).
type Config struct {
	PreferredModels []string      // orden de preferencia
	ModelsCacheTTL  time.Duration // vigencia de la lista de modelos disponibles
	RetryDelay      time.Duration // espera tras un fallo genérico (no tras el último modelo)
	Timeout         time.Duration // límite por intento
	Temperature     float32
	MaxTokens       int
}

// AttemptRecorder recibe el resultado de cada intento contra un modelo. Puede ser nil.
type AttemptRecorder interface {
	ObserveInsightAttempt(provider, model, outcome string, elapsed time.Duration)
}

// Failure error del asesor con el mensaje para el usuario.
// Kind es ports.ErrNotConfigured, ports.ErrAuth o ports.ErrUnavailable (todos los modelos fallaron).
type Failure struct {
	Kind    error
	Message string
	Last    error // último error del proveedor, si hubo
}

func (f *Failure) Error() string {
	if f.Last != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Last)
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Kind }

// Result texto generado y modelo que respondió.
type Result struct {
	Insight   string
	ModelUsed string
}

// Advisor adaptador sin estado de negocio: arma el prompt, elige modelos y reintenta según el tipo de fallo.
type Advisor struct {
	gen      ports.TextGenerator
	cache    ports.ModelCache
	cfg      Config
	recorder AttemptRecorder
	log      zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewAdvisor construye el asesor. gen nil = IA no configurada (Analyze devuelve Failure con ErrNotConfigured).
func NewAdvisor(gen ports.TextGenerator, cache ports.ModelCache, cfg Config, recorder AttemptRecorder, log zerolog.Logger) *Advisor {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.ModelsCacheTTL <= 0 {
		cfg.ModelsCacheTTL = 30 * time.Minute
	}
	return &Advisor{gen: gen, cache: cache, cfg: cfg, recorder: recorder, log: log, sleep: sleepCtx}
}

// WithSleep reemplaza la espera entre intentos (tests).
func (a *Advisor) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Advisor {
	a.sleep = fn
	return a
}

// Configured indica si hay un backend disponible.
func (a *Advisor) Configured() bool { return a.gen != nil }

// Analyze genera el texto para el tipo de análisis y los datos dados.
//
// Por cada modelo candidato, en orden: éxito → devuelve; cuota agotada → siguiente modelo sin espera;
// credenciales o facturación → corta con mensaje de cuenta; otro fallo → espera RetryDelay
// (salvo en el último) y sigue. Si todos fallan devuelve el mensaje de saturación.
func (a *Advisor) Analyze(ctx context.Context, analysisType string, data map[string]any) (*Result, error) {
	if a.gen == nil {
		return nil, &Failure{Kind: ports.ErrNotConfigured, Message: MsgNotConfigured}
	}
	prompt := BuildPrompt(analysisType, data)
	models := a.candidateModels(ctx)
	req := ports.GenerationRequest{
		Prompt:      prompt,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}

	var last error
	for i, model := range models {
		text, err := a.attempt(ctx, model, req)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				text = msgEmpty
			}
			return &Result{Insight: text, ModelUsed: model}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		last = err
		a.log.Warn().Err(err).Str("provider", a.gen.Provider()).Str("model", model).Msg("fallo modelo de IA")

		switch {
		case errors.Is(err, ports.ErrRateLimited):
			continue
		case errors.Is(err, ports.ErrAuth):
			return nil, &Failure{Kind: ports.ErrAuth, Message: fmt.Sprintf(msgAccountFmt, providerLabel(a.gen.Provider())), Last: err}
		}
		if i < len(models)-1 && a.cfg.RetryDelay > 0 {
			if err := a.sleep(ctx, a.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, &Failure{Kind: ports.ErrUnavailable, Message: MsgSaturated, Last: last}
}

func (a *Advisor) attempt(ctx context.Context, model string, req ports.GenerationRequest) (string, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := a.gen.Generate(ctx, model, req)
	if a.recorder != nil {
		a.recorder.ObserveInsightAttempt(a.gen.Provider(), model, attemptOutcome(err), time.Since(start))
	}
	return text, err
}

// candidateModels intersección (en orden de preferencia) entre la lista configurada y los modelos disponibles.
// Si la intersección queda vacía se usa la preferencia tal cual; si listar falla se cachea la preferencia.
func (a *Advisor) candidateModels(ctx context.Context) []string {
	preferred := a.cfg.PreferredModels
	var available []string
	cached := false
	if a.cache != nil {
		available, cached = a.cache.Get(ctx)
	}
	if !cached {
		list, err := a.gen.ListModels(ctx)
		if err != nil {
			a.log.Warn().Err(err).Str("provider", a.gen.Provider()).Msg("no se pudo listar modelos; se usa la preferencia")
			list = preferred
		}
		available = list
		if a.cache != nil {
			if err := a.cache.Set(ctx, list, a.cfg.ModelsCacheTTL); err != nil {
				a.log.Warn().Err(err).Msg("no se pudo guardar la lista de modelos en caché")
			}
		}
	}

	set := make(map[string]struct{}, len(available))
	for _, m := range available {
		set[m] = struct{}{}
	}
	chosen := make([]string, 0, len(preferred))
	for _, m := range preferred {
		if _, ok := set[m]; ok {
			chosen = append(chosen, m)
		}
	}
	if len(chosen) == 0 {
		return preferred
	}
	return chosen
}

func attemptOutcome(err error) string {
	switch {
	case err == nil:
		return AttemptSuccess
	case errors.Is(err, ports.ErrRateLimited):
		return AttemptRateLimited
	case errors.Is(err, ports.ErrAuth):
		return AttemptAuth
	default:
		return AttemptFailed
	}
}

func providerLabel(p string) string {
	switch p {
	case "gemini":
		return "Gemini"
	case "openai":
		return "OpenAI"
	case "anthropic":
		return "Anthropic"
	default:
		return p
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
