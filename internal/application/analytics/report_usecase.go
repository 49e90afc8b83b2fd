package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top de productos que acumula el 80% del ingreso
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// ReportUseCase agrega ventas por rango de fechas y por producto, con ganancia sobre precios congelados.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo}
}

// GetSalesReport genera el reporte de ventas del período con ranking Pareto por ingreso.
func (uc *ReportUseCase) GetSalesReport(ctx context.Context, userID int64, req dto.SalesReportRequest) (*dto.SalesReportDTO, error) {
	start, end, err := ParsePeriod(req.StartDate, req.EndDate, time.Now())
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	// 1) Totales y productos en paralelo (consultas independientes)
	type totalsResult struct {
		totals repository.SalesTotals
		err    error
	}
	type productsResult struct {
		rows []repository.ProductSalesResult
		err  error
	}
	totalsCh := make(chan totalsResult, 1)
	productsCh := make(chan productsResult, 1)

	go func() {
		t, err := uc.analyticsRepo.GetSalesTotals(ctx, userID, start, end)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, userID, start, end, topN)
		productsCh <- productsResult{rows, err}
	}()

	totals := <-totalsCh
	products := <-productsCh
	if totals.err != nil {
		return nil, fmt.Errorf("reporte: totales: %w", totals.err)
	}
	if products.err != nil {
		return nil, fmt.Errorf("reporte: productos: %w", products.err)
	}

	// 2) Ranking con análisis Pareto
	ranking := buildProductRanking(products.rows)
	var pareto []dto.ProductRankingDTO
	for _, p := range ranking {
		if p.IsTopPareto {
			pareto = append(pareto, p)
		}
	}

	marginPct := decimal.Zero
	if totals.totals.Income.IsPositive() {
		marginPct = totals.totals.Profit.Div(totals.totals.Income).Mul(hundred).Round(2)
	}

	return &dto.SalesReportDTO{
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.AddDate(0, 0, -1).Format("2006-01-02"),
		},
		SalesCount:     totals.totals.SalesCount,
		UnitsSold:      totals.totals.UnitsSold,
		Income:         totals.totals.Income.Round(2),
		Profit:         totals.totals.Profit.Round(2),
		MarginPct:      marginPct,
		ProductRanking: ranking,
		ParetoProducts: pareto,
	}, nil
}

// buildProductRanking ordena por ingreso descendente y calcula participación y acumulado.
// IsTopPareto: true mientras el acumulado no supere el 80% (el primero siempre entra).
func buildProductRanking(rows []repository.ProductSalesResult) []dto.ProductRankingDTO {
	if len(rows) == 0 {
		return []dto.ProductRankingDTO{}
	}
	sorted := append([]repository.ProductSalesResult(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Income.GreaterThan(sorted[j].Income) })

	var totalRevenue decimal.Decimal
	for _, r := range sorted {
		totalRevenue = totalRevenue.Add(r.Income)
	}

	ranking := make([]dto.ProductRankingDTO, 0, len(sorted))
	var cumulative decimal.Decimal
	for i, r := range sorted {
		marginPct := decimal.Zero
		if r.Income.IsPositive() {
			marginPct = r.Profit.Div(r.Income).Mul(hundred).Round(2)
		}
		revenuePct := decimal.Zero
		if totalRevenue.IsPositive() {
			revenuePct = r.Income.Div(totalRevenue).Mul(hundred).Round(2)
		}
		cumulative = cumulative.Add(revenuePct)
		ranking = append(ranking, dto.ProductRankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			Income:           r.Income.Round(2),
			Profit:           r.Profit.Round(2),
			MarginPct:        marginPct,
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      cumulative.LessThanOrEqual(pareto80) || i == 0,
		})
	}
	return ranking
}

// ParsePeriod convierte fechas YYYY-MM-DD en el rango [start, end) con end exclusivo
// (el día final se incluye completo). Vacíos: primer día del mes y hoy.
func ParsePeriod(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	loc := now.Location()
	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date inválido", domain.ErrInvalidInput)
		}
	}
	end = end.AddDate(0, 0, 1)

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date inválido", domain.ErrInvalidInput)
		}
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date no puede ser posterior a end_date", domain.ErrInvalidInput)
	}
	return start, end, nil
}
