package dto

import "github.com/shopspring/decimal"

// SalesReportRequest parámetros para GET /api/reports/sales.
type SalesReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; por defecto primer día del mes actual
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; por defecto hoy (inclusive)
	TopN      int    `query:"top_n"`      // máx productos a devolver (default 20, max 200)
}

// PeriodDTO período consultado.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SalesReportDTO reporte de ventas y ganancia del período.
type SalesReportDTO struct {
	Period         PeriodDTO           `json:"period"`
	SalesCount     int                 `json:"sales_count"`
	UnitsSold      int                 `json:"units_sold"`
	Income         decimal.Decimal     `json:"income"`
	Profit         decimal.Decimal     `json:"profit"`     // Σ (unit_price - cost_price) * quantity
	MarginPct      decimal.Decimal     `json:"margin_pct"` // Profit / Income * 100
	ProductRanking []ProductRankingDTO `json:"product_ranking"`
	ParetoProducts []ProductRankingDTO `json:"pareto_products"` // productos que explican ~80% del ingreso
}

// ProductRankingDTO producto en el ranking por ingreso.
type ProductRankingDTO struct {
	Rank             int             `json:"rank"`
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	UnitsSold        int             `json:"units_sold"`
	Income           decimal.Decimal `json:"income"`
	Profit           decimal.Decimal `json:"profit"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"`
}
