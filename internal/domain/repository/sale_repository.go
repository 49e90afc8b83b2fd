package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
// Las líneas son append-only: no hay update ni delete.
type SaleRepository interface {
	// Create inserta la cabecera y completa ID y Date.
	Create(ctx context.Context, sale *entity.Sale) error
	AddItem(ctx context.Context, item *entity.SaleItem) error
	UpdateTotal(ctx context.Context, saleID int64, total decimal.Decimal) error
	// GetByID devuelve la venta con sus ítems, o (nil, nil) si no existe para ese usuario.
	GetByID(ctx context.Context, userID, id int64) (*entity.Sale, error)
	ListByUser(ctx context.Context, userID int64, from, to time.Time, limit, offset int) ([]*entity.Sale, error)
	ExistsForProduct(ctx context.Context, productID int64) (bool, error)
}
