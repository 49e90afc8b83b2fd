package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
)

var _ ports.TextGenerator = (*AnthropicGenerator)(nil)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// AnthropicGenerator adaptador de la Messages API de Anthropic.
type AnthropicGenerator struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAnthropicGenerator construye el adaptador. baseURL vacío usa la API pública.
func NewAnthropicGenerator(apiKey, baseURL string, timeout time.Duration) *AnthropicGenerator {
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	return &AnthropicGenerator{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), httpClient: newHTTPClient(timeout)}
}

func (a *AnthropicGenerator) Provider() string { return "anthropic" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

func anthropicErrorMessage(body []byte) string {
	var e struct {
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != nil {
		return fmt.Sprintf("Anthropic %s: %s", e.Error.Type, e.Error.Message)
	}
	return ""
}

func (a *AnthropicGenerator) headers() map[string]string {
	return map[string]string{"x-api-key": a.apiKey, "anthropic-version": anthropicVersion}
}

// ListModels recorre /models paginando con after_id.
func (a *AnthropicGenerator) ListModels(ctx context.Context) ([]string, error) {
	var out []string
	after := ""
	for {
		q := url.Values{"limit": {"100"}}
		if after != "" {
			q.Set("after_id", after)
		}
		var page anthropicModelList
		if err := doJSON(ctx, a.httpClient, http.MethodGet, a.baseURL+"/models?"+q.Encode(), a.headers(), nil, &page, "", anthropicErrorMessage); err != nil {
			return nil, err
		}
		for _, m := range page.Data {
			out = append(out, m.ID)
		}
		if !page.HasMore || page.LastID == "" {
			return out, nil
		}
		after = page.LastID
	}
}

// Generate envía un único mensaje de usuario y devuelve los bloques de texto concatenados.
func (a *AnthropicGenerator) Generate(ctx context.Context, model string, req ports.GenerationRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	payload := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	var resp anthropicResponse
	if err := doJSON(ctx, a.httpClient, http.MethodPost, a.baseURL+"/messages", a.headers(), payload, &resp, model, anthropicErrorMessage); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
