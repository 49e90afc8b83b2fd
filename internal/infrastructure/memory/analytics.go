package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados calculados sobre el estado en memoria.
type AnalyticsRepo struct{ h handle }

func (r *AnalyticsRepo) GetInventorySummary(_ context.Context, userID int64, lowStockThreshold int) (repository.InventorySummary, error) {
	out := repository.InventorySummary{InventoryValue: decimal.Zero}
	err := r.h.do("analytics.GetInventorySummary", func(st *state) error {
		for _, p := range st.products {
			if p.UserID != userID || p.IsArchived() {
				continue
			}
			out.TotalProducts++
			if p.Stock <= lowStockThreshold {
				out.LowStock++
			}
			out.InventoryValue = out.InventoryValue.Add(p.InventoryValue())
		}
		return nil
	})
	return out, err
}

func (r *AnalyticsRepo) GetSalesTotals(_ context.Context, userID int64, from, to time.Time) (repository.SalesTotals, error) {
	out := repository.SalesTotals{Income: decimal.Zero, Profit: decimal.Zero}
	err := r.h.do("analytics.GetSalesTotals", func(st *state) error {
		for _, s := range st.sales {
			if s.UserID != userID || !inRange(s.Date, from, to) {
				continue
			}
			out.SalesCount++
			out.Income = out.Income.Add(s.TotalAmount)
			for _, it := range s.Items {
				out.UnitsSold += it.Quantity
				out.Profit = out.Profit.Add(it.Profit())
			}
		}
		return nil
	})
	return out, err
}

func (r *AnalyticsRepo) GetTopProducts(_ context.Context, userID int64, from, to time.Time, limit int) ([]repository.ProductSalesResult, error) {
	byID := make(map[int64]*repository.ProductSalesResult)
	err := r.h.do("analytics.GetTopProducts", func(st *state) error {
		for _, s := range st.sales {
			if s.UserID != userID || !inRange(s.Date, from, to) {
				continue
			}
			for _, it := range s.Items {
				row, ok := byID[it.ProductID]
				if !ok {
					row = &repository.ProductSalesResult{ProductID: it.ProductID, Income: decimal.Zero, Profit: decimal.Zero}
					if p, ok := st.products[it.ProductID]; ok {
						row.ProductName = p.Name
					}
					byID[it.ProductID] = row
				}
				row.UnitsSold += it.Quantity
				row.Income = row.Income.Add(it.Subtotal())
				row.Profit = row.Profit.Add(it.Profit())
			}
		}
		return nil
	})
	out := make([]repository.ProductSalesResult, 0, len(byID))
	for _, row := range byID {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	return page(out, limit, 0), err
}

func (r *AnalyticsRepo) GetDailySales(_ context.Context, userID int64, from, to time.Time) ([]repository.DailySalesResult, error) {
	byDay := make(map[time.Time]*repository.DailySalesResult)
	err := r.h.do("analytics.GetDailySales", func(st *state) error {
		for _, s := range st.sales {
			if s.UserID != userID || !inRange(s.Date, from, to) {
				continue
			}
			y, m, d := s.Date.Date()
			day := time.Date(y, m, d, 0, 0, 0, 0, s.Date.Location())
			row, ok := byDay[day]
			if !ok {
				row = &repository.DailySalesResult{Day: day, Income: decimal.Zero}
				byDay[day] = row
			}
			row.Count++
			row.Income = row.Income.Add(s.TotalAmount)
		}
		return nil
	})
	out := make([]repository.DailySalesResult, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, err
}

func (r *AnalyticsRepo) GetZombieProducts(_ context.Context, userID int64, since time.Time, limit int) ([]repository.ZombieProductResult, error) {
	var out []repository.ZombieProductResult
	err := r.h.do("analytics.GetZombieProducts", func(st *state) error {
		lastSale := make(map[int64]time.Time)
		for _, s := range st.sales {
			for _, it := range s.Items {
				if s.Date.After(lastSale[it.ProductID]) {
					lastSale[it.ProductID] = s.Date
				}
			}
		}
		for _, p := range st.products {
			if p.UserID != userID || p.IsArchived() || p.Stock <= 0 {
				continue
			}
			last, sold := lastSale[p.ID]
			if sold && !last.Before(since) {
				continue
			}
			row := repository.ZombieProductResult{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
			if sold {
				last := last
				row.LastSaleAt = &last
			}
			out = append(out, row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock > out[j].Stock
		}
		return out[i].ProductID < out[j].ProductID
	})
	return page(out, limit, 0), err
}

func (r *AnalyticsRepo) GetPlatformStats(_ context.Context) (repository.PlatformStats, error) {
	out := repository.PlatformStats{PlatformRevenue: decimal.Zero}
	err := r.h.do("analytics.GetPlatformStats", func(st *state) error {
		out.TotalUsers = len(st.users)
		for _, p := range st.products {
			if !p.IsArchived() {
				out.TotalProducts++
			}
		}
		out.TotalSales = len(st.sales)
		for _, s := range st.sales {
			out.PlatformRevenue = out.PlatformRevenue.Add(s.TotalAmount)
		}
		return nil
	})
	return out, err
}
