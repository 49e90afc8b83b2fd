package inventory

import (
	"context"

	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad de cada ajuste (stock + movimiento).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
	) error) error
}
