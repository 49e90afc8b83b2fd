package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStatsDTO respuesta de GET /api/dashboard/stats.
type DashboardStatsDTO struct {
	TotalProducts   int                `json:"total_products"`
	LowStock        int                `json:"low_stock"`
	InventoryValue  decimal.Decimal    `json:"inventory_value"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}

// SalesSummaryDTO respuesta de GET /api/dashboard/sales-summary.
type SalesSummaryDTO struct {
	SalesToday     decimal.Decimal    `json:"sales_today"`
	DailyAverage   decimal.Decimal    `json:"daily_average"` // promedio diario del mes en curso
	MonthIncome    decimal.Decimal    `json:"month_income"`
	MonthProfit    decimal.Decimal    `json:"month_profit"`
	MonthSales     int                `json:"month_sales"`
	DailySales     []DailySalesDTO    `json:"daily_sales"`
	TopProducts    []TopProductDTO    `json:"top_products"`
	ZombieProducts []ZombieProductDTO `json:"zombie_products"`
	DateLabel      string             `json:"date_label"` // ej: "Febrero 2026"
}

// DailySalesDTO ingresos de un día del mes.
type DailySalesDTO struct {
	Day    string          `json:"day"` // YYYY-MM-DD
	Income decimal.Decimal `json:"income"`
	Count  int             `json:"count"`
}

// TopProductDTO producto más vendido del período.
type TopProductDTO struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Income      decimal.Decimal `json:"income"`
	Profit      decimal.Decimal `json:"profit"`
}

// ZombieProductDTO producto con stock sin ventas recientes.
type ZombieProductDTO struct {
	ProductID  int64      `json:"product_id"`
	Name       string     `json:"name"`
	Stock      int        `json:"stock"`
	LastSaleAt *time.Time `json:"last_sale_at"`
}

// AdminStatsDTO respuesta de GET /api/admin/stats.
type AdminStatsDTO struct {
	TotalUsers      int             `json:"total_users"`
	TotalProducts   int             `json:"total_products"`
	TotalSales      int             `json:"total_sales"`
	PlatformRevenue decimal.Decimal `json:"platform_revenue"`
}
