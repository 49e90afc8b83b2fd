package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock es el stock inicial (genera un movimiento "set").
type CreateProductRequest struct {
	Barcode   string          `json:"barcode" validate:"required,min=1,max=50"`
	Name      string          `json:"name" validate:"required,min=1,max=100"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     int             `json:"stock" validate:"min=0,max=2147483647"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: el stock cambia por ajustes o ventas).
type UpdateProductRequest struct {
	Barcode   *string          `json:"barcode" validate:"omitempty,min=1,max=50"`
	Name      *string          `json:"name" validate:"omitempty,min=1,max=100"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
