package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// HeaderRequestID cabecera de correlación; se genera si el cliente no la envía.
const HeaderRequestID = "X-Request-ID"

// HTTPRecorder recibe la duración y el status de cada request (métricas).
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// RequestLogger registra una línea por request con método, ruta, status, latencia y request_id.
// recorder puede ser nil.
func RequestLogger(log zerolog.Logger, recorder HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)
		c.Locals("request_id", reqID)

		chainErr := c.Next()
		if chainErr != nil {
			// El ErrorHandler escribe la respuesta; aquí solo se conoce el status final.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		elapsed := time.Since(start)

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error().Err(chainErr)
		case status >= 400:
			ev = log.Warn()
		}
		ev = ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("route", route).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed)
		if uid := GetUserID(c); uid > 0 {
			ev = ev.Int64("user_id", uid)
		}
		ev.Msg("request")

		if recorder != nil {
			recorder.ObserveHTTP(c.Method(), route, status, elapsed)
		}
		return nil
	}
}

// ErrorHandler respuesta JSON para errores que llegan a Fiber (rutas inexistentes, panics recuperados, body enorme).
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	resp := dto.ErrorResponse{Code: dto.CodeInternal, Message: "error interno"}
	switch {
	case code == fiber.StatusNotFound:
		resp = dto.ErrorResponse{Code: dto.CodeNotFound, Message: "ruta no encontrada"}
	case code < 500:
		resp = dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message}
	}
	return c.Status(code).JSON(resp)
}
