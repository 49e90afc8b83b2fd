// Package ai contiene los adaptadores de ports.TextGenerator para Gemini, OpenAI y Anthropic.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/ports"
)

const maxResponseBytes = 256 * 1024

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doJSON envía la petición y decodifica la respuesta 200 en out.
// Un código distinto de 200 se devuelve como *ports.GenerationError clasificado por estado;
// errFrom extrae el mensaje del cuerpo de error del proveedor.
func doJSON(ctx context.Context, c *http.Client, method, url string, headers map[string]string, in, out any, model string, errFrom func([]byte) string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("AI: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return &ports.GenerationError{Kind: ports.ErrUnavailable, Model: model, Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &ports.GenerationError{Kind: ports.ErrUnavailable, Model: model, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		msg := ""
		if errFrom != nil {
			msg = errFrom(rawBody)
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ports.GenerationError{
			Kind:       ports.ClassifyStatus(resp.StatusCode),
			Model:      model,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", msg),
		}
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return &ports.GenerationError{Kind: ports.ErrUnavailable, Model: model, StatusCode: resp.StatusCode, Err: fmt.Errorf("deserializar respuesta: %w", err)}
	}
	return nil
}
