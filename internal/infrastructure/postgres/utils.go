package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-pos/internal/domain"
)

const (
	pgUniqueViolation  = "23505"
	pgCheckViolation   = "23514"
	pgFKViolation      = "23503"
	pgStringTruncation = "22001"
	pgNumericRange     = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError traduce violaciones de constraints a errores de dominio; el resto se envuelve con op.
// 23514 solo puede venir de CHECK (stock >= 0): última línea de defensa si el chequeo en Go se saltara.
// Textos o números que no caben en la columna (22001, 22003) son entrada inválida.
func mapError(op string, err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case pgCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrInsufficientStock)
	case pgFKViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case pgStringTruncation, pgNumericRange:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}
