package repository

import (
	"context"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las lecturas por usuario devuelven (nil, nil) si el producto no existe, está archivado o es de otro usuario.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, userID, id int64) (*entity.Product, error)
	GetByBarcode(ctx context.Context, userID int64, barcode string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, userID, id int64) (*entity.Product, error)
	GetByBarcodeForUpdate(ctx context.Context, userID int64, barcode string) (*entity.Product, error)
	// Update modifica datos descriptivos y precios. Nunca el stock.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id int64, stock int) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Product, error)
	ListAll(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Delete archiva el producto. El historial de movimientos nunca se borra.
	Delete(ctx context.Context, userID, id int64) error
}
