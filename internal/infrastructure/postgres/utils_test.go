package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-pos/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{pgUniqueViolation, domain.ErrDuplicate},
		{pgCheckViolation, domain.ErrInsufficientStock},
		{pgFKViolation, domain.ErrConflict},
		{pgStringTruncation, domain.ErrInvalidInput},
		{pgNumericRange, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := mapError("insert product", fmt.Errorf("exec: %w", &pgconn.PgError{Code: tt.code}))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapError_SinClasificar(t *testing.T) {
	cause := errors.New("conexión cerrada")
	err := mapError("insert sale", cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "insert sale")
}
