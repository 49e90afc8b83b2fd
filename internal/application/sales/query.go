package sales

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxExportRows    = 5000
)

// QueryUseCase lecturas de ventas: detalle, listado, comprobante PDF y exportación a planilla.
type QueryUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	renderer    ReceiptRenderer
	exporter    SalesExporter
}

// NewQueryUseCase construye el caso de uso. renderer y exporter pueden ser nil si no se usan.
func NewQueryUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	renderer ReceiptRenderer,
	exporter SalesExporter,
) *QueryUseCase {
	return &QueryUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		renderer:    renderer,
		exporter:    exporter,
	}
}

// Get devuelve una venta del usuario con sus ítems.
func (uc *QueryUseCase) Get(ctx context.Context, userID, saleID int64) (*dto.SaleResponse, error) {
	sale, err := uc.get(ctx, userID, saleID)
	if err != nil {
		return nil, err
	}
	out := ToSaleResponse(sale)
	return &out, nil
}

// List lista ventas del usuario en [from, to). Fechas cero = sin límite.
func (uc *QueryUseCase) List(ctx context.Context, userID int64, from, to time.Time, limit, offset int) (*dto.SaleListResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.saleRepo.ListByUser(ctx, userID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, ToSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Receipt genera el comprobante PDF de la venta.
func (uc *QueryUseCase) Receipt(ctx context.Context, userID, saleID int64) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("comprobante: renderer no configurado")
	}
	sale, err := uc.get(ctx, userID, saleID)
	if err != nil {
		return nil, err
	}
	products, err := uc.productsOf(ctx, userID, []*entity.Sale{sale})
	if err != nil {
		return nil, err
	}
	seller, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.renderer.RenderReceipt(sale, products, seller)
}

// Export escribe las ventas del rango como planilla en w.
func (uc *QueryUseCase) Export(ctx context.Context, userID int64, from, to time.Time, w io.Writer) error {
	if uc.exporter == nil {
		return fmt.Errorf("exportación: exporter no configurado")
	}
	list, err := uc.saleRepo.ListByUser(ctx, userID, from, to, maxExportRows, 0)
	if err != nil {
		return err
	}
	products, err := uc.productsOf(ctx, userID, list)
	if err != nil {
		return err
	}
	return uc.exporter.ExportSales(w, list, products)
}

func (uc *QueryUseCase) get(ctx context.Context, userID, saleID int64) (*entity.Sale, error) {
	if saleID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(ctx, userID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// productsOf carga los productos referenciados por las ventas (nombres para PDF y planilla).
func (uc *QueryUseCase) productsOf(ctx context.Context, userID int64, list []*entity.Sale) (map[int64]*entity.Product, error) {
	out := make(map[int64]*entity.Product)
	for _, s := range list {
		for _, it := range s.Items {
			if _, ok := out[it.ProductID]; ok {
				continue
			}
			p, err := uc.productRepo.GetByID(ctx, userID, it.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				out[it.ProductID] = p
			}
		}
	}
	return out, nil
}

// ToSaleResponse convierte la venta al DTO de salida.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			CostPrice: it.CostPrice,
			Subtotal:  it.Subtotal(),
		})
	}
	return dto.SaleResponse{
		ID:            s.ID,
		Date:          s.Date,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
		Items:         items,
	}
}
