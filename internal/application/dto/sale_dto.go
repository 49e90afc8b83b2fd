package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea solicitada en una venta.
type SaleItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateSaleRequest body de POST /api/sales.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"omitempty,max=30"`
}

// SaleItemResponse línea de venta con precios congelados.
type SaleItemResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse recibo de una venta.
type SaleResponse struct {
	ID            int64              `json:"id"`
	Date          time.Time          `json:"date"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	Items         []SaleItemResponse `json:"items"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
