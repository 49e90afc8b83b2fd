package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/insight"
	"github.com/jhoicas/inventario-pos/internal/application/ports"
	"github.com/jhoicas/inventario-pos/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeDomainError traduce un error de dominio a status HTTP + ErrorResponse.
// Los errores no clasificados se responden como 500 sin exponer el detalle interno.
func writeDomainError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, dto.CodeInternal
	msg := "error interno"

	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code, msg = fiber.StatusConflict, dto.CodeInsufficientStock, err.Error()
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code, msg = fiber.StatusNotFound, dto.CodeNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, dto.CodeValidation, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, dto.CodeUnauthorized, "credenciales inválidas"
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, dto.CodeForbidden, err.Error()
	case errors.Is(err, domain.ErrEmailAlreadyExists), errors.Is(err, domain.ErrDuplicate):
		status, code, msg = fiber.StatusConflict, dto.CodeDuplicate, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, code, msg = fiber.StatusConflict, dto.CodeConflict, err.Error()
	}

	resp := dto.ErrorResponse{Code: code, Message: msg}
	if id, ok := domain.ProductIDOf(err); ok {
		resp.ProductID = &id
	}
	return c.Status(status).JSON(resp)
}

// writeInsightError responde los fallos del asesor con su mensaje para el usuario.
func writeInsightError(c *fiber.Ctx, err error) error {
	var f *insight.Failure
	if !errors.As(err, &f) {
		return writeDomainError(c, err)
	}
	status := fiber.StatusServiceUnavailable
	if errors.Is(f, ports.ErrAuth) {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: dto.CodeUnavailable, Message: f.Message})
}

// badBody respuesta estándar para un cuerpo que no se pudo parsear.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// validateStruct valida tags `validate` y responde 400 con el primer campo inválido.
// Devuelve (true, nil) si la entrada es válida.
func validateStruct(c *fiber.Ctx, in any) (bool, error) {
	err := validate.Struct(in)
	if err == nil {
		return true, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    dto.CodeValidation,
			Message: "campos inválidos: " + strings.Join(fields, ", "),
		})
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeValidation, Message: err.Error()})
}

// paramID lee un id numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
}

// pageParams lee limit/offset con tope (limit por defecto 20, máximo 100).
func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
