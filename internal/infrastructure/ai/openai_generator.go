package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
)

var _ ports.TextGenerator = (*OpenAIGenerator)(nil)

var openAITextPrefixes = []string{"gpt-", "o1", "o3", "o4"}

// OpenAIGenerator adaptador sobre el SDK oficial (Responses API).
// Los reintentos del SDK se desactivan: el asesor decide cuándo pasar al siguiente modelo.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator construye el cliente. baseURL vacío usa la API pública.
func NewOpenAIGenerator(apiKey, baseURL string, timeout time.Duration) *OpenAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := openai.NewClient(opts...)
	return &OpenAIGenerator{client: &client}
}

func (o *OpenAIGenerator) Provider() string { return "openai" }

// ListModels devuelve los ids de la cuenta que sirven para generar texto (familias gpt y o*).
func (o *OpenAIGenerator) ListModels(ctx context.Context) ([]string, error) {
	iter := o.client.Models.ListAutoPaging(ctx)
	var out []string
	for iter.Next() {
		id := iter.Current().ID
		for _, prefix := range openAITextPrefixes {
			if strings.HasPrefix(id, prefix) {
				out = append(out, id)
				break
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, classifyOpenAI(err, "")
	}
	return out, nil
}

func (o *OpenAIGenerator) Generate(ctx context.Context, model string, req ports.GenerationRequest) (string, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(req.Prompt),
		},
		Temperature: param.NewOpt(float64(req.Temperature)),
	}
	if req.System != "" {
		params.Instructions = param.NewOpt(req.System)
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = param.NewOpt(int64(req.MaxTokens))
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", classifyOpenAI(err, model)
	}
	return strings.TrimSpace(resp.OutputText()), nil
}

func classifyOpenAI(err error, model string) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ports.GenerationError{
			Kind:       ports.ClassifyStatus(apiErr.StatusCode),
			Model:      model,
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ports.GenerationError{Kind: ports.ErrUnavailable, Model: model, Err: err}
}
