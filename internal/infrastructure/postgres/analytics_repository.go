package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para dashboard, reportes y administración.
// Todos los rangos son [from, to).
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetInventorySummary total de productos, stock bajo (<= umbral) y valor a costo (Σ stock × cost_price).
func (r *AnalyticsRepo) GetInventorySummary(ctx context.Context, userID int64, lowStockThreshold int) (repository.InventorySummary, error) {
	const query = `
	SELECT
	    COUNT(*)                                          AS total_products,
	    COUNT(*) FILTER (WHERE stock <= $2)               AS low_stock,
	    COALESCE(SUM(stock * cost_price), 0)              AS inventory_value
	FROM products
	WHERE user_id = $1 AND archived_at IS NULL`
	var out repository.InventorySummary
	if err := r.pool.QueryRow(ctx, query, userID, lowStockThreshold).Scan(&out.TotalProducts, &out.LowStock, &out.InventoryValue); err != nil {
		return out, fmt.Errorf("analytics.GetInventorySummary: %w", err)
	}
	return out, nil
}

// GetSalesTotals cantidad de ventas, unidades, ingresos y ganancia con los precios congelados de cada línea.
func (r *AnalyticsRepo) GetSalesTotals(ctx context.Context, userID int64, from, to time.Time) (repository.SalesTotals, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM sales s
	      WHERE s.user_id = $1 AND s.date >= $2 AND s.date < $3)                    AS sales_count,
	    (SELECT COALESCE(SUM(s.total_amount), 0) FROM sales s
	      WHERE s.user_id = $1 AND s.date >= $2 AND s.date < $3)                    AS income,
	    COALESCE(SUM(si.quantity), 0)                                                AS units_sold,
	    COALESCE(SUM((si.unit_price - si.cost_price) * si.quantity), 0)              AS profit
	FROM sales s
	JOIN sale_items si ON si.sale_id = s.id
	WHERE s.user_id = $1 AND s.date >= $2 AND s.date < $3`
	var out repository.SalesTotals
	err := r.pool.QueryRow(ctx, query, userID, from, to).Scan(&out.SalesCount, &out.Income, &out.UnitsSold, &out.Profit)
	if err != nil {
		return out, fmt.Errorf("analytics.GetSalesTotals: %w", err)
	}
	return out, nil
}

// GetTopProducts productos más vendidos por unidades en el rango.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, userID int64, from, to time.Time, limit int) ([]repository.ProductSalesResult, error) {
	const query = `
	SELECT
	    si.product_id,
	    COALESCE(p.name, '')                                  AS product_name,
	    SUM(si.quantity)                                      AS units_sold,
	    SUM(si.unit_price * si.quantity)                      AS income,
	    SUM((si.unit_price - si.cost_price) * si.quantity)    AS profit
	FROM sales s
	JOIN sale_items si ON si.sale_id = s.id
	LEFT JOIN products p ON p.id = si.product_id
	WHERE s.user_id = $1 AND s.date >= $2 AND s.date < $3
	GROUP BY si.product_id, p.name
	ORDER BY units_sold DESC, si.product_id
	LIMIT $4`
	rows, err := r.pool.Query(ctx, query, userID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.ProductSalesResult
	for rows.Next() {
		var row repository.ProductSalesResult
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.UnitsSold, &row.Income, &row.Profit); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetDailySales ingresos y cantidad de ventas por día calendario.
func (r *AnalyticsRepo) GetDailySales(ctx context.Context, userID int64, from, to time.Time) ([]repository.DailySalesResult, error) {
	const query = `
	SELECT
	    date_trunc('day', s.date)   AS day,
	    SUM(s.total_amount)         AS income,
	    COUNT(*)                    AS sales_count
	FROM sales s
	WHERE s.user_id = $1 AND s.date >= $2 AND s.date < $3
	GROUP BY 1
	ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetDailySales: %w", err)
	}
	defer rows.Close()

	var results []repository.DailySalesResult
	for rows.Next() {
		var row repository.DailySalesResult
		if err := rows.Scan(&row.Day, &row.Income, &row.Count); err != nil {
			return nil, fmt.Errorf("analytics.GetDailySales scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetZombieProducts productos con stock cuya última venta es anterior a since (o nunca vendidos).
func (r *AnalyticsRepo) GetZombieProducts(ctx context.Context, userID int64, since time.Time, limit int) ([]repository.ZombieProductResult, error) {
	const query = `
	SELECT p.id, p.name, p.stock, ls.last_sale
	FROM products p
	LEFT JOIN LATERAL (
	    SELECT MAX(s.date) AS last_sale
	    FROM sale_items si
	    JOIN sales s ON s.id = si.sale_id
	    WHERE si.product_id = p.id
	) ls ON TRUE
	WHERE p.user_id = $1
	  AND p.archived_at IS NULL
	  AND p.stock > 0
	  AND (ls.last_sale IS NULL OR ls.last_sale < $2)
	ORDER BY p.stock DESC, p.id
	LIMIT $3`
	rows, err := r.pool.Query(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetZombieProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.ZombieProductResult
	for rows.Next() {
		var row repository.ZombieProductResult
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Stock, &row.LastSaleAt); err != nil {
			return nil, fmt.Errorf("analytics.GetZombieProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetPlatformStats totales globales (administración).
func (r *AnalyticsRepo) GetPlatformStats(ctx context.Context) (repository.PlatformStats, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM users)                             AS total_users,
	    (SELECT COUNT(*) FROM products WHERE archived_at IS NULL) AS total_products,
	    (SELECT COUNT(*) FROM sales)                             AS total_sales,
	    (SELECT COALESCE(SUM(total_amount), 0) FROM sales)       AS platform_revenue`
	var out repository.PlatformStats
	if err := r.pool.QueryRow(ctx, query).Scan(&out.TotalUsers, &out.TotalProducts, &out.TotalSales, &out.PlatformRevenue); err != nil {
		return out, fmt.Errorf("analytics.GetPlatformStats: %w", err)
	}
	return out, nil
}
