// Package analytics contiene los casos de uso para reportes de negocio y el
// dashboard de ventas e inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

const (
	dashboardTopProducts    = 5  // productos en el widget "más vendidos"
	dashboardRecentMoves    = 10 // últimos movimientos en /stats
	dashboardZombieProducts = 10
)

// Thresholds umbrales de los indicadores (LOW_STOCK_THRESHOLD, ZOMBIE_DAYS).
type Thresholds struct {
	LowStock   int
	ZombieDays int
}

// DashboardUseCase genera el resumen de inventario y de ventas del usuario.
//
// Fuente de datos: AnalyticsRepository (consultas read-only) y el historial de movimientos.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	movRepo       repository.MovementRepository
	thresholds    Thresholds
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, movRepo repository.MovementRepository, th Thresholds) *DashboardUseCase {
	if th.ZombieDays <= 0 {
		th.ZombieDays = 30
	}
	return &DashboardUseCase{analyticsRepo: analyticsRepo, movRepo: movRepo, thresholds: th, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetStats resumen del catálogo: total de productos, stock bajo, valor a costo y últimos movimientos.
func (uc *DashboardUseCase) GetStats(ctx context.Context, userID int64) (*dto.DashboardStatsDTO, error) {
	summary, err := uc.analyticsRepo.GetInventorySummary(ctx, userID, uc.thresholds.LowStock)
	if err != nil {
		return nil, fmt.Errorf("dashboard: inventario: %w", err)
	}
	moves, err := uc.movRepo.List(ctx, repository.MovementFilter{UserID: userID, Limit: dashboardRecentMoves})
	if err != nil {
		return nil, fmt.Errorf("dashboard: movimientos: %w", err)
	}
	recent := make([]dto.MovementResponse, 0, len(moves))
	for _, m := range moves {
		recent = append(recent, inventory.ToMovementResponse(m))
	}
	return &dto.DashboardStatsDTO{
		TotalProducts:   summary.TotalProducts,
		LowStock:        summary.LowStock,
		InventoryValue:  summary.InventoryValue.Round(2),
		RecentMovements: recent,
	}, nil
}

// GetSalesSummary construye el SalesSummaryDTO del mes en curso.
//
// Cinco consultas en paralelo:
//  1. GetSalesTotals(hoy)        → SalesToday
//  2. GetSalesTotals(mes)        → MonthIncome + MonthProfit + DailyAverage
//  3. GetDailySales(mes)         → DailySales
//  4. GetTopProducts(mes, top 5) → TopProducts
//  5. GetZombieProducts          → ZombieProducts
func (uc *DashboardUseCase) GetSalesSummary(ctx context.Context, userID int64) (*dto.SalesSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha [desde, hasta) ───────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	zombieSince := todayStart.AddDate(0, 0, -uc.thresholds.ZombieDays)

	// ── Goroutines para paralelizar las consultas DB ─────────────────────────
	type totalsResult struct {
		totals repository.SalesTotals
		err    error
	}
	type dailyResult struct {
		rows []repository.DailySalesResult
		err  error
	}
	type topResult struct {
		rows []repository.ProductSalesResult
		err  error
	}
	type zombieResult struct {
		rows []repository.ZombieProductResult
		err  error
	}

	todayCh := make(chan totalsResult, 1)
	monthCh := make(chan totalsResult, 1)
	dailyCh := make(chan dailyResult, 1)
	topCh := make(chan topResult, 1)
	zombieCh := make(chan zombieResult, 1)

	go func() {
		t, err := uc.analyticsRepo.GetSalesTotals(ctx, userID, todayStart, tomorrow)
		todayCh <- totalsResult{t, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetSalesTotals(ctx, userID, monthStart, tomorrow)
		monthCh <- totalsResult{t, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetDailySales(ctx, userID, monthStart, tomorrow)
		dailyCh <- dailyResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, userID, monthStart, tomorrow, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetZombieProducts(ctx, userID, zombieSince, dashboardZombieProducts)
		zombieCh <- zombieResult{rows, err}
	}()

	today := <-todayCh
	month := <-monthCh
	daily := <-dailyCh
	top := <-topCh
	zombies := <-zombieCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", month.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("dashboard: ventas diarias: %w", daily.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: más vendidos: %w", top.err)
	}
	if zombies.err != nil {
		return nil, fmt.Errorf("dashboard: productos sin rotación: %w", zombies.err)
	}

	// Promedio sobre los días transcurridos del mes (hoy incluido).
	elapsedDays := decimal.NewFromInt(int64(now.Day()))
	dailyAvg := month.totals.Income.Div(elapsedDays).Round(2)

	dailySales := make([]dto.DailySalesDTO, 0, len(daily.rows))
	for _, d := range daily.rows {
		dailySales = append(dailySales, dto.DailySalesDTO{
			Day:    d.Day.Format("2006-01-02"),
			Income: d.Income.Round(2),
			Count:  d.Count,
		})
	}
	topProducts := make([]dto.TopProductDTO, 0, len(top.rows))
	for _, p := range top.rows {
		topProducts = append(topProducts, dto.TopProductDTO{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			UnitsSold:   p.UnitsSold,
			Income:      p.Income.Round(2),
			Profit:      p.Profit.Round(2),
		})
	}
	zombieProducts := make([]dto.ZombieProductDTO, 0, len(zombies.rows))
	for _, z := range zombies.rows {
		zombieProducts = append(zombieProducts, dto.ZombieProductDTO{
			ProductID:  z.ProductID,
			Name:       z.Name,
			Stock:      z.Stock,
			LastSaleAt: z.LastSaleAt,
		})
	}

	return &dto.SalesSummaryDTO{
		SalesToday:     today.totals.Income.Round(2),
		DailyAverage:   dailyAvg,
		MonthIncome:    month.totals.Income.Round(2),
		MonthProfit:    month.totals.Profit.Round(2),
		MonthSales:     month.totals.SalesCount,
		DailySales:     dailySales,
		TopProducts:    topProducts,
		ZombieProducts: zombieProducts,
		DateLabel:      monthLabel(now),
	}, nil
}

// GetPlatformStats métricas globales (administración).
func (uc *DashboardUseCase) GetPlatformStats(ctx context.Context) (*dto.AdminStatsDTO, error) {
	st, err := uc.analyticsRepo.GetPlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: plataforma: %w", err)
	}
	return &dto.AdminStatsDTO{
		TotalUsers:      st.TotalUsers,
		TotalProducts:   st.TotalProducts,
		TotalSales:      st.TotalSales,
		PlatformRevenue: st.PlatformRevenue.Round(2),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
