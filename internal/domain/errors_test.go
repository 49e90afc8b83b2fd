package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-pos/internal/domain"
)

func TestProductError_IsKind(t *testing.T) {
	err := fmt.Errorf("venta: %w", domain.NewInsufficientStock(7, 4, 1))

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	id, ok := domain.ProductIDOf(err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.Contains(t, err.Error(), "solicitado 4, disponible 1")
}

func TestProductError_NotFound(t *testing.T) {
	err := domain.NewProductNotFound(99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "producto 99: recurso no encontrado", err.Error())
}

func TestProductIDOf_OtroError(t *testing.T) {
	_, ok := domain.ProductIDOf(domain.ErrConflict)
	assert.False(t, ok)
}
