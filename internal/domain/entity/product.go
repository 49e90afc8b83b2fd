package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de un usuario.
// Stock nunca es negativo; solo cambia por ventas o ajustes (que dejan movimiento).
// Un producto eliminado queda archivado (ArchivedAt != nil): deja de verse pero conserva su historial.
type Product struct {
	ID         int64
	UserID     int64  // dueño del catálogo
	Barcode    string // único por usuario entre los activos
	Name       string
	CostPrice  decimal.Decimal
	SalePrice  decimal.Decimal
	Stock      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// HasStock indica si hay al menos qty unidades disponibles.
func (p *Product) HasStock(qty int) bool {
	return qty <= p.Stock
}

// IsArchived indica si el producto fue eliminado del catálogo.
func (p *Product) IsArchived() bool {
	return p.ArchivedAt != nil
}

// InventoryValue valor del stock a costo.
func (p *Product) InventoryValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock)))
}
