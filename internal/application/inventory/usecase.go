package inventory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// maxStock tope de stock por producto (columna INTEGER).
const maxStock = math.MaxInt32

// AdjustStockUseCase registra ajustes manuales de stock (increase, decrease, set) de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y consulta el historial de movimientos.
type AdjustStockUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	now      func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(txRunner TxRunner, movRepo repository.MovementRepository) *AdjustStockUseCase {
	return &AdjustStockUseCase{txRunner: txRunner, movRepo: movRepo, now: time.Now}
}

// AdjustInput entrada de un ajuste. Se identifica el producto por ProductID o, si es 0, por Barcode.
type AdjustInput struct {
	UserID    int64
	ProductID int64
	Barcode   string
	Type      string // increase | decrease | set
	Quantity  int
	UnitCost  *decimal.Decimal // solo increase: recalcula el costo promedio ponderado
}

// Adjust aplica el ajuste y deja un movimiento con el stock resultante.
// Un decrease mayor al stock disponible falla con ErrInsufficientStock (nunca se trunca a 0).
func (uc *AdjustStockUseCase) Adjust(ctx context.Context, in AdjustInput) (*dto.MovementResponse, error) {
	if err := validateAdjust(in); err != nil {
		return nil, err
	}
	barcode := strings.TrimSpace(in.Barcode)

	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.MovementRepository,
	) error {
		product, err := lockProduct(ctx, productRepo, in.UserID, in.ProductID, barcode)
		if err != nil {
			return err
		}

		newStock, err := applyAdjustment(product, in.Type, in.Quantity)
		if err != nil {
			return err
		}
		delta := newStock - product.Stock
		if in.UnitCost != nil {
			product.CostPrice = domaininv.WeightedAverageCost(product.Stock, product.CostPrice, in.Quantity, *in.UnitCost)
			product.UpdatedAt = uc.now()
			if err := productRepo.Update(ctx, product); err != nil {
				return err
			}
		}
		if err := productRepo.UpdateStock(ctx, product.ID, newStock); err != nil {
			return err
		}
		mov = &entity.Movement{
			ProductID:       product.ID,
			UserID:          in.UserID,
			Type:            in.Type,
			QuantityChanged: delta,
			FinalStock:      newStock,
			Timestamp:       uc.now(),
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(mov)
	return &out, nil
}

// ListMovements devuelve el historial del usuario, opcionalmente filtrado por producto (más reciente primero).
func (uc *AdjustStockUseCase) ListMovements(ctx context.Context, userID, productID int64, limit, offset int) (*dto.MovementListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	list, err := uc.movRepo.List(ctx, repository.MovementFilter{
		UserID:    userID,
		ProductID: productID,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func validateAdjust(in AdjustInput) error {
	if in.UserID <= 0 {
		return fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
	}
	if in.ProductID <= 0 && strings.TrimSpace(in.Barcode) == "" {
		return fmt.Errorf("%w: indique product_id o barcode", domain.ErrInvalidInput)
	}
	if !entity.IsValidAdjustment(in.Type) {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Quantity > maxStock {
		return fmt.Errorf("%w: la cantidad supera el máximo de %d", domain.ErrInvalidInput, maxStock)
	}
	switch in.Type {
	case entity.MovementIncrease, entity.MovementDecrease:
		if in.Quantity <= 0 {
			return fmt.Errorf("%w: la cantidad debe ser mayor a 0", domain.ErrInvalidInput)
		}
	case entity.MovementSet:
		if in.Quantity < 0 {
			return fmt.Errorf("%w: el stock no puede ser negativo", domain.ErrInvalidInput)
		}
	}
	if in.UnitCost != nil {
		if in.Type != entity.MovementIncrease {
			return fmt.Errorf("%w: unit_cost solo aplica a increase", domain.ErrInvalidInput)
		}
		if in.UnitCost.IsNegative() {
			return fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
		}
	}
	return nil
}

// lockProduct obtiene el producto con bloqueo de fila, por id o por código de barras.
func lockProduct(ctx context.Context, repo repository.ProductRepository, userID, productID int64, barcode string) (*entity.Product, error) {
	if productID > 0 {
		p, err := repo.GetForUpdate(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewProductNotFound(productID)
		}
		return p, nil
	}
	p, err := repo.GetByBarcodeForUpdate(ctx, userID, barcode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("código de barras %q: %w", barcode, domain.ErrNotFound)
	}
	return p, nil
}

func applyAdjustment(p *entity.Product, kind string, qty int) (int, error) {
	switch kind {
	case entity.MovementIncrease:
		if qty > maxStock-p.Stock {
			return 0, fmt.Errorf("%w: el stock resultante supera el máximo de %d", domain.ErrInvalidInput, maxStock)
		}
		return p.Stock + qty, nil
	case entity.MovementDecrease:
		if !p.HasStock(qty) {
			return 0, domain.NewInsufficientStock(p.ID, qty, p.Stock)
		}
		return p.Stock - qty, nil
	default:
		return qty, nil
	}
}

// ToMovementResponse convierte un movimiento al DTO de salida.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Type:            m.Type,
		QuantityChanged: m.QuantityChanged,
		FinalStock:      m.FinalStock,
		Timestamp:       m.Timestamp,
	}
}
