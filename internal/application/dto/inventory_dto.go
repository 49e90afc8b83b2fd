package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body de POST /api/inventory/adjust.
// Se identifica el producto por product_id o por barcode (uno de los dos).
type AdjustStockRequest struct {
	ProductID int64  `json:"product_id" validate:"omitempty,gt=0"`
	Barcode   string `json:"barcode" validate:"omitempty,max=50"`
	Type      string `json:"type" validate:"required,oneof=increase decrease set"`
	Quantity  int    `json:"quantity" validate:"min=0,max=2147483647"`
	// UnitCost costo unitario de la mercadería que entra (solo increase). Recalcula el costo promedio.
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// MovementResponse fila del historial de movimientos.
type MovementResponse struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	Type            string    `json:"movement_type"`
	QuantityChanged int       `json:"quantity_changed"`
	FinalStock      int       `json:"final_stock"`
	Timestamp       time.Time `json:"timestamp"`
}

// MovementListResponse lista paginada del historial.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
