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

var _ ports.TextGenerator = (*GeminiGenerator)(nil)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiGenerator adaptador REST de Google Gemini.
type GeminiGenerator struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiGenerator construye el adaptador. baseURL vacío usa la API pública.
func NewGeminiGenerator(apiKey, baseURL string, timeout time.Duration) *GeminiGenerator {
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	return &GeminiGenerator{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), httpClient: newHTTPClient(timeout)}
}

func (g *GeminiGenerator) Provider() string { return "gemini" }

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiModelList struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

type geminiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func geminiErrorMessage(body []byte) string {
	var e geminiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != nil {
		return fmt.Sprintf("Gemini %s: %s", e.Error.Status, e.Error.Message)
	}
	return ""
}

// ListModels devuelve los modelos que soportan generateContent, sin el prefijo "models/".
func (g *GeminiGenerator) ListModels(ctx context.Context) ([]string, error) {
	var out []string
	pageToken := ""
	for {
		q := url.Values{"key": {g.apiKey}, "pageSize": {"1000"}}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		var page geminiModelList
		if err := doJSON(ctx, g.httpClient, http.MethodGet, g.baseURL+"/models?"+q.Encode(), nil, nil, &page, "", geminiErrorMessage); err != nil {
			return nil, err
		}
		for _, m := range page.Models {
			if !contains(m.SupportedGenerationMethods, "generateContent") {
				continue
			}
			out = append(out, strings.TrimPrefix(m.Name, "models/"))
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

// Generate llama a models/{model}:generateContent y concatena las partes del primer candidato.
func (g *GeminiGenerator) Generate(ctx context.Context, model string, req ports.GenerationRequest) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(model), url.QueryEscape(g.apiKey))
	var resp geminiResponse
	if err := doJSON(ctx, g.httpClient, http.MethodPost, endpoint, nil, payload, &resp, model, geminiErrorMessage); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
