package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/pdf"
)

func sampleSale() *entity.Sale {
	return &entity.Sale{
		ID:            42,
		UserID:        1,
		Date:          time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC),
		TotalAmount:   decimal.RequireFromString("2500.50"),
		PaymentMethod: entity.PaymentCash,
		Items: []entity.SaleItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("1000.25"), CostPrice: decimal.NewFromInt(600)},
			{ProductID: 99, Quantity: 1, UnitPrice: decimal.NewFromInt(500), CostPrice: decimal.NewFromInt(300)},
		},
	}
}

func TestRenderReceipt_ProducesPDF(t *testing.T) {
	g := pdf.NewReceiptGenerator()
	products := map[int64]*entity.Product{1: {ID: 1, Name: "Café"}}
	seller := &entity.User{Email: "tienda@test.com", FirstName: "Almacén", LastName: "Don Pepe"}

	out, err := g.RenderReceipt(sampleSale(), products, seller)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderReceipt_NilSale(t *testing.T) {
	_, err := pdf.NewReceiptGenerator().RenderReceipt(nil, nil, nil)
	assert.Error(t, err)
}

func TestQRPayload(t *testing.T) {
	assert.Equal(t, "venta=42;fecha=2026-02-10T15:30:00Z;total=2500.50", pdf.QRPayload(sampleSale()))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1.234.567,50", pdf.FormatMoney(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "$0,00", pdf.FormatMoney(decimal.Zero))
}
