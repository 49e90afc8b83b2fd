package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía ajustes o ventas.
type ProductUseCase struct {
	txRunner inventory.TxRunner
	repo     repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner inventory.TxRunner, repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo}
}

// Create crea un producto. Si trae stock inicial se registra un movimiento "set" en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, userID int64, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	barcode := strings.TrimSpace(in.Barcode)
	name := strings.TrimSpace(in.Name)
	if barcode == "" || name == "" || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePrices(in.CostPrice, in.SalePrice); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		UserID:    userID,
		Barcode:   barcode,
		Name:      name,
		CostPrice: in.CostPrice.Round(2),
		SalePrice: in.SalePrice.Round(2),
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.MovementRepository,
	) error {
		existing, err := productRepo.GetByBarcode(ctx, userID, barcode)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		return movRepo.Create(ctx, &entity.Movement{
			ProductID:       product.ID,
			UserID:          userID,
			Type:            entity.MovementSet,
			QuantityChanged: product.Stock,
			FinalStock:      product.Stock,
			Timestamp:       now,
		})
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto propio.
func (uc *ProductUseCase) GetByID(ctx context.Context, userID, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// GetByBarcode busca un producto propio por código de barras (lector del POS).
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, userID int64, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByBarcode(ctx, userID, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza datos y precios. No modifica Stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, userID, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Barcode != nil {
		product.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.CostPrice != nil {
		product.CostPrice = in.CostPrice.Round(2)
	}
	if in.SalePrice != nil {
		product.SalePrice = in.SalePrice.Round(2)
	}
	if product.Barcode == "" || product.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePrices(product.CostPrice, product.SalePrice); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos propios con paginación.
func (uc *ProductUseCase) List(ctx context.Context, userID int64, limit, offset int) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repo.ListByUser(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toProductList(list, page), nil
}

// ListAll lista productos de todos los usuarios (administración).
func (uc *ProductUseCase) ListAll(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repo.ListAll(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toProductList(list, page), nil
}

// Delete archiva un producto propio: deja de listarse y de poder venderse, y su historial
// de movimientos se conserva. Si tiene ventas registradas devuelve ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, userID, id int64) error {
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.MovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		sold, err := saleRepo.ExistsForProduct(ctx, id)
		if err != nil {
			return err
		}
		if sold {
			return domain.ErrConflict
		}
		return productRepo.Delete(ctx, userID, id)
	})
}

func validatePrices(cost, sale decimal.Decimal) error {
	if cost.IsNegative() || sale.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

func toProductList(list []*entity.Product, page dto.PageRequest) *dto.ProductListResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
}

// ToProductResponse convierte el producto al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Barcode:   p.Barcode,
		Name:      p.Name,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
