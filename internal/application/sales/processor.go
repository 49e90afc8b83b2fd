package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// Resultados de una venta para métricas y logs.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalid           = "invalid"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

const maxPaymentMethodLen = 30

// Item línea solicitada: producto y cantidad (> 0).
type Item struct {
	ProductID int64
	Quantity  int
}

// Input pedido de venta de un usuario sobre su propio catálogo.
type Input struct {
	UserID        int64
	Items         []Item
	PaymentMethod string // vacío = Efectivo
}

// Processor ejecuta ventas atómicas: valida stock, descuenta, congela precios y deja historial.
// O se aplica la venta completa o no queda rastro de ella.
type Processor struct {
	txRunner TxRunner
	recorder Recorder
	tracer   trace.Tracer
	log      zerolog.Logger
	now      func() time.Time
}

// NewProcessor construye el procesador. recorder puede ser nil.
func NewProcessor(txRunner TxRunner, recorder Recorder, log zerolog.Logger) *Processor {
	return &Processor{
		txRunner: txRunner,
		recorder: recorder,
		tracer:   otel.Tracer("github.com/jhoicas/inventario-pos/internal/application/sales"),
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Process registra la venta dentro de una única transacción.
// Errores posibles: domain.ErrInvalidInput, *domain.ProductError (ErrNotFound o ErrInsufficientStock)
// o un error de infraestructura. Ante cualquier error la transacción se revierte.
func (p *Processor) Process(ctx context.Context, in Input) (*entity.Sale, error) {
	ctx, span := p.tracer.Start(ctx, "sales.Process", trace.WithAttributes(
		attribute.Int64("user.id", in.UserID),
		attribute.Int("sale.lines", len(in.Items)),
	))
	defer span.End()
	start := time.Now()

	sale, err := p.process(ctx, in)

	outcome := Outcome(err)
	total := decimal.Zero
	if sale != nil {
		total = sale.TotalAmount
		span.SetAttributes(attribute.Int64("sale.id", sale.ID), attribute.String("sale.total", total.String()))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		ev := p.log.Warn()
		if outcome == OutcomeError {
			ev = p.log.Error()
		}
		ev.Err(err).Int64("user_id", in.UserID).Str("outcome", outcome).Msg("venta rechazada")
	} else {
		p.log.Info().Int64("user_id", in.UserID).Int64("sale_id", sale.ID).
			Str("total", total.String()).Int("lines", len(sale.Items)).Msg("venta registrada")
	}
	if p.recorder != nil {
		p.recorder.ObserveSale(outcome, time.Since(start), total, len(in.Items))
	}
	return sale, err
}

func (p *Processor) process(ctx context.Context, in Input) (*entity.Sale, error) {
	payment, err := validate(in)
	if err != nil {
		return nil, err
	}

	var result *entity.Sale
	err = p.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.MovementRepository,
	) error {
		now := p.now()
		sale := &entity.Sale{
			UserID:        in.UserID,
			Date:          now,
			TotalAmount:   decimal.Zero,
			PaymentMethod: payment,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		total := decimal.Zero
		for _, it := range in.Items {
			// Bloquea la fila: dos ventas simultáneas del mismo producto se serializan aquí.
			product, err := productRepo.GetForUpdate(ctx, in.UserID, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.NewProductNotFound(it.ProductID)
			}
			if !product.HasStock(it.Quantity) {
				return domain.NewInsufficientStock(product.ID, it.Quantity, product.Stock)
			}

			item := entity.SaleItem{
				SaleID:    sale.ID,
				ProductID: product.ID,
				Quantity:  it.Quantity,
				UnitPrice: product.SalePrice,
				CostPrice: product.CostPrice,
			}
			if err := saleRepo.AddItem(ctx, &item); err != nil {
				return err
			}
			total = total.Add(item.Subtotal())

			product.Stock -= it.Quantity
			if err := productRepo.UpdateStock(ctx, product.ID, product.Stock); err != nil {
				return err
			}
			mov := &entity.Movement{
				ProductID:       product.ID,
				UserID:          in.UserID,
				Type:            entity.MovementSale,
				QuantityChanged: it.Quantity,
				FinalStock:      product.Stock,
				Timestamp:       now,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)
		}

		if err := saleRepo.UpdateTotal(ctx, sale.ID, total); err != nil {
			return err
		}
		sale.TotalAmount = total
		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validate(in Input) (string, error) {
	if in.UserID <= 0 {
		return "", fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return "", fmt.Errorf("%w: la venta no tiene ítems", domain.ErrInvalidInput)
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			return "", fmt.Errorf("%w: ítem %d sin product_id", domain.ErrInvalidInput, i)
		}
		if it.Quantity <= 0 {
			return "", fmt.Errorf("%w: ítem %d con cantidad %d", domain.ErrInvalidInput, i, it.Quantity)
		}
	}
	payment := strings.TrimSpace(in.PaymentMethod)
	if payment == "" {
		payment = entity.PaymentCash
	}
	if len([]rune(payment)) > maxPaymentMethodLen {
		return "", fmt.Errorf("%w: medio de pago demasiado largo", domain.ErrInvalidInput)
	}
	return payment, nil
}

// Outcome clasifica el error de una venta.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	default:
		return OutcomeError
	}
}
