package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago que envía el checkout.
const (
	PaymentCash  = "Efectivo"
	PaymentDebit = "Débito"
)

// Sale cabecera de una venta. TotalAmount = Σ Quantity*UnitPrice de sus ítems.
type Sale struct {
	ID            int64
	UserID        int64
	Date          time.Time
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Items         []SaleItem
}

// SaleItem línea de venta con precios copiados del producto al momento de vender.
type SaleItem struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal // snapshot de sale_price
	CostPrice decimal.Decimal // snapshot de cost_price
}

// Subtotal cantidad por precio unitario.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Profit ganancia bruta de la línea.
func (i SaleItem) Profit() decimal.Decimal {
	return i.UnitPrice.Sub(i.CostPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}
