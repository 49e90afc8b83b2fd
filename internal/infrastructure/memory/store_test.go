package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/memory"
)

func newProduct(userID int64, barcode string, stock int) *entity.Product {
	return &entity.Product{
		UserID: userID, Barcode: barcode, Name: "P " + barcode,
		CostPrice: decimal.NewFromInt(10), SalePrice: decimal.NewFromInt(15), Stock: stock,
	}
}

func TestStore_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := newProduct(1, "A", 5)
	require.NoError(t, store.Products().Create(ctx, p))

	boom := errors.New("boom")
	err := store.Run(ctx, func(pr repository.ProductRepository, sr repository.SaleRepository, mr repository.MovementRepository) error {
		require.NoError(t, pr.UpdateStock(ctx, p.ID, 1))
		require.NoError(t, sr.Create(ctx, &entity.Sale{UserID: 1}))
		require.NoError(t, mr.Create(ctx, &entity.Movement{ProductID: p.ID, UserID: 1, Type: entity.MovementSale, QuantityChanged: 4, FinalStock: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Products().GetByID(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	assert.Empty(t, store.Sales().All())
	movs, err := store.Movements().List(ctx, repository.MovementFilter{UserID: 1})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestStore_CommitVisibleFuera(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := newProduct(1, "A", 5)
	require.NoError(t, store.Products().Create(ctx, p))

	err := store.Run(ctx, func(pr repository.ProductRepository, _ repository.SaleRepository, _ repository.MovementRepository) error {
		return pr.UpdateStock(ctx, p.ID, 2)
	})
	require.NoError(t, err)

	got, err := store.Products().GetByID(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestStore_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewStore().Run(ctx, func(repository.ProductRepository, repository.SaleRepository, repository.MovementRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_FailOn(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	injected := errors.New("disco lleno")
	store.FailOn("products.Create", injected)

	err := store.Products().Create(ctx, newProduct(1, "A", 1))
	assert.ErrorIs(t, err, injected)

	store.FailOn("products.Create", nil)
	assert.NoError(t, store.Products().Create(ctx, newProduct(1, "A", 1)))
}

func TestProductRepo_Restricciones(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := newProduct(1, "A", 3)
	require.NoError(t, store.Products().Create(ctx, p))

	assert.ErrorIs(t, store.Products().Create(ctx, newProduct(1, "A", 1)), domain.ErrDuplicate)
	assert.NoError(t, store.Products().Create(ctx, newProduct(2, "A", 1)), "el código es único por usuario")
	assert.ErrorIs(t, store.Products().UpdateStock(ctx, p.ID, -1), domain.ErrInsufficientStock)

	other, err := store.Products().GetByID(ctx, 2, p.ID)
	require.NoError(t, err)
	assert.Nil(t, other, "producto de otro usuario no es visible")
}

func TestProductRepo_UpdateNoTocaStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := newProduct(1, "A", 7)
	require.NoError(t, store.Products().Create(ctx, p))

	p.Name = "Renombrado"
	p.Stock = 0
	require.NoError(t, store.Products().Update(ctx, p))

	got, err := store.Products().GetByID(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", got.Name)
	assert.Equal(t, 7, got.Stock)
}

func TestSaleRepo_ListPorRango(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	day := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Sales().Create(ctx, &entity.Sale{UserID: 1, Date: day.AddDate(0, 0, i)}))
	}
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{UserID: 2, Date: day}))

	list, err := store.Sales().ListByUser(ctx, 1, day, day.AddDate(0, 0, 2), 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "rango semiabierto [from, to)")

	all, err := store.Sales().ListByUser(ctx, 1, time.Time{}, time.Time{}, 2, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductRepo_DeleteArchivaYConservaMovimientos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := newProduct(1, "A", 3)
	require.NoError(t, store.Products().Create(ctx, p))
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{ProductID: p.ID, UserID: 1, Type: entity.MovementSet, QuantityChanged: 3, FinalStock: 3}))

	require.NoError(t, store.Products().Delete(ctx, 1, p.ID))
	assert.ErrorIs(t, store.Products().Delete(ctx, 1, p.ID), domain.ErrNotFound, "ya archivado")

	got, err := store.Products().GetByID(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	p.Name = "Renombrado"
	assert.ErrorIs(t, store.Products().Update(ctx, p), domain.ErrNotFound, "un archivado no se edita")

	movs, err := store.Movements().List(ctx, repository.MovementFilter{UserID: 1, ProductID: p.ID})
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	assert.NoError(t, store.Products().Create(ctx, newProduct(1, "A", 1)), "el código queda libre")
}
