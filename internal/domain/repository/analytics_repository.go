package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventorySummary resumen del catálogo de un usuario.
type InventorySummary struct {
	TotalProducts  int
	LowStock       int // productos con stock <= umbral
	InventoryValue decimal.Decimal
}

// SalesTotals agregados de ventas en un rango.
// Profit = Σ (unit_price - cost_price) * quantity con los precios congelados de cada línea.
type SalesTotals struct {
	SalesCount int
	UnitsSold  int
	Income     decimal.Decimal
	Profit     decimal.Decimal
}

// ProductSalesResult agregado por producto en un rango.
type ProductSalesResult struct {
	ProductID   int64
	ProductName string
	UnitsSold   int
	Income      decimal.Decimal
	Profit      decimal.Decimal
}

// DailySalesResult ingresos de un día.
type DailySalesResult struct {
	Day    time.Time
	Income decimal.Decimal
	Count  int
}

// ZombieProductResult producto con stock que no se vende desde hace tiempo.
type ZombieProductResult struct {
	ProductID  int64
	Name       string
	Stock      int
	LastSaleAt *time.Time // nil = nunca vendido
}

// PlatformStats métricas globales para administración.
type PlatformStats struct {
	TotalUsers      int
	TotalProducts   int
	TotalSales      int
	PlatformRevenue decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para dashboard y reportes.
type AnalyticsRepository interface {
	GetInventorySummary(ctx context.Context, userID int64, lowStockThreshold int) (InventorySummary, error)
	GetSalesTotals(ctx context.Context, userID int64, from, to time.Time) (SalesTotals, error)
	GetTopProducts(ctx context.Context, userID int64, from, to time.Time, limit int) ([]ProductSalesResult, error)
	GetDailySales(ctx context.Context, userID int64, from, to time.Time) ([]DailySalesResult, error)
	// GetZombieProducts productos con stock > 0 sin ventas desde `since`.
	GetZombieProducts(ctx context.Context, userID int64, since time.Time, limit int) ([]ZombieProductResult, error)
	GetPlatformStats(ctx context.Context) (PlatformStats, error)
}
