package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/ai"
	"github.com/jhoicas/inventario-pos/pkg/config"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGemini_ListModelsFiltersAndStripsPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, 200, map[string]any{
				"models": []map[string]any{
					{"name": "models/gemini-1.5-flash", "supportedGenerationMethods": []string{"generateContent", "countTokens"}},
					{"name": "models/embedding-001", "supportedGenerationMethods": []string{"embedContent"}},
				},
				"nextPageToken": "p2",
			})
			return
		}
		writeJSON(w, 200, map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-2.0-flash-lite", "supportedGenerationMethods": []string{"generateContent"}},
			},
		})
	}))
	defer srv.Close()

	g := ai.NewGeminiGenerator("k", srv.URL, time.Second)
	models, err := g.ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-2.0-flash-lite"}, models)
}

func TestGemini_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["generationConfig"].(map[string]any)
		assert.EqualValues(t, 300, cfg["maxOutputTokens"])
		writeJSON(w, 200, map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "Vende "}, {"text": "más. "}}}},
			},
		})
	}))
	defer srv.Close()

	g := ai.NewGeminiGenerator("k", srv.URL, time.Second)
	text, err := g.Generate(context.Background(), "gemini-1.5-flash", ports.GenerationRequest{Prompt: "hola", Temperature: 0.7, MaxTokens: 300})

	require.NoError(t, err)
	assert.Equal(t, "Vende más.", text)
}

func TestGenerators_ClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ports.ErrRateLimited},
		{http.StatusForbidden, ports.ErrAuth},
		{http.StatusPaymentRequired, ports.ErrAuth},
		{http.StatusServiceUnavailable, ports.ErrUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, map[string]any{"error": map[string]any{"code": tc.status, "message": "nope", "type": "x"}})
		}))

		gens := []ports.TextGenerator{
			ai.NewGeminiGenerator("k", srv.URL, time.Second),
			ai.NewAnthropicGenerator("k", srv.URL, time.Second),
		}
		for _, g := range gens {
			_, err := g.Generate(context.Background(), "m", ports.GenerationRequest{Prompt: "p"})
			require.ErrorIs(t, err, tc.want, "%s %d", g.Provider(), tc.status)
			var ge *ports.GenerationError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tc.status, ge.StatusCode)
			assert.Equal(t, "m", ge.Model)
		}
		srv.Close()
	}
}

func TestAnthropic_GenerateAndList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		switch r.URL.Path {
		case "/models":
			writeJSON(w, 200, map[string]any{"data": []map[string]any{{"id": "claude-3-5-haiku-20241022"}}, "has_more": false})
		case "/messages":
			writeJSON(w, 200, map[string]any{"content": []map[string]any{{"type": "text", "text": "Todo bien."}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := ai.NewAnthropicGenerator("k", srv.URL, time.Second)

	models, err := a.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-3-5-haiku-20241022"}, models)

	text, err := a.Generate(context.Background(), "claude-3-5-haiku-20241022", ports.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Todo bien.", text)
}

func TestOpenAI_RateLimitIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}})
	}))
	defer srv.Close()

	o := ai.NewOpenAIGenerator("k", srv.URL, time.Second)
	_, err := o.Generate(context.Background(), "gpt-4o-mini", ports.GenerationRequest{Prompt: "p"})

	require.ErrorIs(t, err, ports.ErrRateLimited)
}

func TestNewFromConfig(t *testing.T) {
	assert.Nil(t, ai.NewFromConfig(config.AIConfig{Provider: "gemini"}))

	g := ai.NewFromConfig(config.AIConfig{Provider: "openai", OpenAIAPIKey: "x"})
	require.NotNil(t, g)
	assert.Equal(t, "openai", g.Provider())

	g = ai.NewFromConfig(config.AIConfig{Provider: "anthropic", AnthropicAPIKey: "x"})
	require.NotNil(t, g)
	assert.Equal(t, "anthropic", g.Provider())
}
