package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const ownerID int64 = 1

type recorderStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorderStub) ObserveSale(outcome string, _ time.Duration, _ decimal.Decimal, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func newProcessor(store *memory.Store) (*sales.Processor, *recorderStub) {
	rec := &recorderStub{}
	return sales.NewProcessor(store, rec, zerolog.Nop()), rec
}

func seedProduct(t *testing.T, store *memory.Store, userID int64, barcode string, stock int, cost, price string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		UserID:    userID,
		Barcode:   barcode,
		Name:      "Producto " + barcode,
		CostPrice: decimal.RequireFromString(cost),
		SalePrice: decimal.RequireFromString(price),
		Stock:     stock,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), ownerID, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func saleMovements(t *testing.T, store *memory.Store, productID int64) []*entity.Movement {
	t.Helper()
	list, err := store.Movements().List(context.Background(), repository.MovementFilter{UserID: ownerID, ProductID: productID})
	require.NoError(t, err)
	var out []*entity.Movement
	// List devuelve el más reciente primero; se invierte para leer en orden de ejecución.
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Type == entity.MovementSale {
			out = append(out, list[i])
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas exitosas
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_VentaExitosa_TotalYStock(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "2.00", "3.50")
	b := seedProduct(t, store, ownerID, "B", 4, "10.00", "15.25")
	proc, rec := newProcessor(store)

	sale, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID,
		Items:  []sales.Item{{ProductID: a.ID, Quantity: 3}, {ProductID: b.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, sale)

	// total == Σ quantity*unit_price
	sum := decimal.Zero
	for _, it := range sale.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, sale.TotalAmount.Equal(sum))
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("41.00")), "3*3.50 + 2*15.25")
	assert.Equal(t, entity.PaymentCash, sale.PaymentMethod)

	assert.Equal(t, 7, stockOf(t, store, a.ID))
	assert.Equal(t, 2, stockOf(t, store, b.ID))

	movA := saleMovements(t, store, a.ID)
	require.Len(t, movA, 1)
	assert.Equal(t, 7, movA[0].FinalStock)
	assert.Equal(t, 3, movA[0].QuantityChanged, "las filas sale registran la cantidad vendida")
	movB := saleMovements(t, store, b.ID)
	require.Len(t, movB, 1)
	assert.Equal(t, 2, movB[0].FinalStock)

	stored, err := store.Sales().GetByID(context.Background(), ownerID, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.TotalAmount.Equal(sale.TotalAmount))
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, []string{sales.OutcomeSuccess}, rec.outcomes)
}

func TestProcess_PreciosCongelados(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "2.00", "3.50")
	proc, _ := newProcessor(store)

	sale, err := proc.Process(context.Background(), sales.Input{UserID: ownerID, Items: []sales.Item{{ProductID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	// Cambiar precios después de vender no altera la línea registrada.
	a.SalePrice = decimal.RequireFromString("99.00")
	a.CostPrice = decimal.RequireFromString("50.00")
	require.NoError(t, store.Products().Update(context.Background(), a))

	stored, err := store.Sales().GetByID(context.Background(), ownerID, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("3.50")))
	assert.True(t, stored.Items[0].CostPrice.Equal(decimal.RequireFromString("2.00")))
}

func TestProcess_MismoProductoDosLineas_Acumula(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "1.00", "2.00")
	proc, _ := newProcessor(store)

	sale, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID,
		Items:  []sales.Item{{ProductID: a.ID, Quantity: 4}, {ProductID: a.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Len(t, sale.Items, 2)
	assert.Equal(t, 3, stockOf(t, store, a.ID))

	movs := saleMovements(t, store, a.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, 6, movs[0].FinalStock)
	assert.Equal(t, 4, movs[0].QuantityChanged)
	assert.Equal(t, 3, movs[1].FinalStock)
	assert.Equal(t, 3, movs[1].QuantityChanged)
}

func TestProcess_MismoProductoDosLineas_SegundaExcede(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 5, "1.00", "2.00")
	proc, _ := newProcessor(store)

	_, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID,
		Items:  []sales.Item{{ProductID: a.ID, Quantity: 4}, {ProductID: a.ID, Quantity: 2}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var pe *domain.ProductError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Requested)
	assert.Equal(t, 1, pe.Available, "la segunda línea ve el stock ya descontado por la primera")
	assert.Equal(t, 5, stockOf(t, store, a.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos: nada se persiste
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_StockInsuficiente_NoPersisteNada(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "1.00", "2.00")
	b := seedProduct(t, store, ownerID, "B", 1, "1.00", "2.00")
	proc, rec := newProcessor(store)

	_, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID,
		Items:  []sales.Item{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 5}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	id, ok := domain.ProductIDOf(err)
	require.True(t, ok)
	assert.Equal(t, b.ID, id)

	assert.Equal(t, 10, stockOf(t, store, a.ID), "la primera línea se revierte")
	assert.Equal(t, 1, stockOf(t, store, b.ID))
	assert.Empty(t, store.Sales().All())
	assert.Empty(t, saleMovements(t, store, a.ID))
	assert.Equal(t, []string{sales.OutcomeInsufficientStock}, rec.outcomes)
}

func TestProcess_ProductoInexistente_NotFound(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "1.00", "2.00")
	proc, _ := newProcessor(store)

	_, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID,
		Items:  []sales.Item{{ProductID: a.ID, Quantity: 1}, {ProductID: 9999, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	id, _ := domain.ProductIDOf(err)
	assert.Equal(t, int64(9999), id)

	assert.Equal(t, 10, stockOf(t, store, a.ID))
	assert.Empty(t, store.Sales().All())
}

func TestProcess_ProductoDeOtroUsuario_NotFound(t *testing.T) {
	store := memory.NewStore()
	ajeno := seedProduct(t, store, 2, "X", 10, "1.00", "2.00")
	proc, _ := newProcessor(store)

	_, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID,
		Items:  []sales.Item{{ProductID: ajeno.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	p, err := store.Products().GetByID(context.Background(), 2, ajeno.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
}

func TestProcess_FalloDeInfraestructura_Rollback(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "1.00", "2.00")
	proc, rec := newProcessor(store)

	boom := errors.New("disco lleno")
	store.FailOn("movements.Create", boom)

	_, err := proc.Process(context.Background(), sales.Input{UserID: ownerID, Items: []sales.Item{{ProductID: a.ID, Quantity: 2}}})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 10, stockOf(t, store, a.ID))
	assert.Empty(t, store.Sales().All())
	assert.Equal(t, []string{sales.OutcomeError}, rec.outcomes)
}

func TestProcess_EntradaInvalida(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 10, "1.00", "2.00")
	proc, _ := newProcessor(store)

	cases := map[string]sales.Input{
		"sin items":         {UserID: ownerID},
		"cantidad cero":     {UserID: ownerID, Items: []sales.Item{{ProductID: a.ID, Quantity: 0}}},
		"cantidad negativa": {UserID: ownerID, Items: []sales.Item{{ProductID: a.ID, Quantity: -1}}},
		"sin producto":      {UserID: ownerID, Items: []sales.Item{{Quantity: 1}}},
		"sin usuario":       {Items: []sales.Item{{ProductID: a.ID, Quantity: 1}}},
		"medio de pago largo": {UserID: ownerID, PaymentMethod: "transferencia bancaria internacional diferida",
			Items: []sales.Item{{ProductID: a.ID, Quantity: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := proc.Process(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 10, stockOf(t, store, a.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y reintentos
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_Concurrencia_SoloUnaVentaGana(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 5, "1.00", "2.00")
	proc, _ := newProcessor(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = proc.Process(context.Background(), sales.Input{
				UserID: ownerID,
				Items:  []sales.Item{{ProductID: a.ID, Quantity: 4}},
			})
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 1, stockOf(t, store, a.ID))
	assert.Len(t, store.Sales().All(), 1)
}

func TestProcess_ReintentoTrasReponer_UnaSolaVenta(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 2, "1.00", "2.00")
	proc, _ := newProcessor(store)
	in := sales.Input{UserID: ownerID, Items: []sales.Item{{ProductID: a.ID, Quantity: 5}}}

	_, err := proc.Process(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	require.NoError(t, store.Products().UpdateStock(context.Background(), a.ID, 8))

	sale, err := proc.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, store.Sales().All(), 1)
	assert.Equal(t, sale.ID, store.Sales().All()[0].ID)
	assert.Equal(t, 3, stockOf(t, store, a.ID))
	assert.Len(t, saleMovements(t, store, a.ID), 1)
}

func TestProcess_UsaRelojInyectado(t *testing.T) {
	store := memory.NewStore()
	a := seedProduct(t, store, ownerID, "A", 2, "1.00", "2.00")
	fixed := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	proc, _ := newProcessor(store)
	proc.WithClock(func() time.Time { return fixed })

	sale, err := proc.Process(context.Background(), sales.Input{
		UserID: ownerID, PaymentMethod: entity.PaymentDebit,
		Items: []sales.Item{{ProductID: a.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, sale.Date)
	assert.Equal(t, entity.PaymentDebit, sale.PaymentMethod)
	assert.Equal(t, fixed, saleMovements(t, store, a.ID)[0].Timestamp)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, sales.OutcomeSuccess, sales.Outcome(nil))
	assert.Equal(t, sales.OutcomeNotFound, sales.Outcome(domain.NewProductNotFound(1)))
	assert.Equal(t, sales.OutcomeInsufficientStock, sales.Outcome(domain.NewInsufficientStock(1, 2, 1)))
	assert.Equal(t, sales.OutcomeInvalid, sales.Outcome(domain.ErrInvalidInput))
	assert.Equal(t, sales.OutcomeError, sales.Outcome(errors.New("x")))
}
