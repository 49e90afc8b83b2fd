package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// ProductError error de dominio asociado a un producto concreto (venta o ajuste).
// Kind es ErrNotFound o ErrInsufficientStock; errors.Is(err, Kind) funciona vía Unwrap.
type ProductError struct {
	Kind      error
	ProductID int64
	Requested int // solo para ErrInsufficientStock
	Available int // solo para ErrInsufficientStock
}

// NewProductNotFound construye el error de producto inexistente (o de otro usuario).
func NewProductNotFound(productID int64) *ProductError {
	return &ProductError{Kind: ErrNotFound, ProductID: productID}
}

// NewInsufficientStock construye el error de stock insuficiente con cantidades.
func NewInsufficientStock(productID int64, requested, available int) *ProductError {
	return &ProductError{Kind: ErrInsufficientStock, ProductID: productID, Requested: requested, Available: available}
}

func (e *ProductError) Error() string {
	if errors.Is(e.Kind, ErrInsufficientStock) {
		return fmt.Sprintf("producto %d: stock insuficiente (solicitado %d, disponible %d)", e.ProductID, e.Requested, e.Available)
	}
	return fmt.Sprintf("producto %d: %v", e.ProductID, e.Kind)
}

func (e *ProductError) Unwrap() error { return e.Kind }

// ProductIDOf devuelve el producto involucrado si err es (o envuelve) un *ProductError.
func ProductIDOf(err error) (int64, bool) {
	var pe *ProductError
	if errors.As(err, &pe) {
		return pe.ProductID, true
	}
	return 0, false
}
