package repository

import (
	"context"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// MovementFilter filtro para el historial. ProductID 0 = todos los productos del usuario.
type MovementFilter struct {
	UserID    int64
	ProductID int64
	Limit     int
	Offset    int
}

// MovementRepository historial append-only de mutaciones de stock.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
