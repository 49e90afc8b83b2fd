package sales

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y el caller recibe ese mismo error.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Recorder recibe el resultado de cada venta (métricas). Puede ser nil.
type Recorder interface {
	ObserveSale(outcome string, elapsed time.Duration, total decimal.Decimal, lines int)
}

// ReceiptRenderer genera el comprobante PDF de una venta.
type ReceiptRenderer interface {
	RenderReceipt(sale *entity.Sale, products map[int64]*entity.Product, seller *entity.User) ([]byte, error)
}

// SalesExporter escribe un listado de ventas como planilla.
type SalesExporter interface {
	ExportSales(w io.Writer, sales []*entity.Sale, products map[int64]*entity.Product) error
}
