package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas de venta. Las líneas son append-only.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y completa ID y Date (now() de la transacción si Date es cero).
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	var date any
	if !s.Date.IsZero() {
		date = s.Date
	}
	const query = `
		INSERT INTO sales (user_id, date, total_amount, payment_method)
		VALUES ($1, COALESCE($2::timestamptz, now()), $3, $4)
		RETURNING id, date`
	if err := r.q.QueryRow(ctx, query, s.UserID, date, s.TotalAmount, s.PaymentMethod).Scan(&s.ID, &s.Date); err != nil {
		return mapError("insert sale", err)
	}
	return nil
}

func (r *SaleRepo) AddItem(ctx context.Context, it *entity.SaleItem) error {
	const query = `
		INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, cost_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.q.QueryRow(ctx, query, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.CostPrice).Scan(&it.ID); err != nil {
		return mapError("insert sale item", err)
	}
	return nil
}

func (r *SaleRepo) UpdateTotal(ctx context.Context, saleID int64, total decimal.Decimal) error {
	if _, err := r.q.Exec(ctx, `UPDATE sales SET total_amount = $2 WHERE id = $1`, saleID, total); err != nil {
		return fmt.Errorf("update sale total: %w", err)
	}
	return nil
}

// GetByID devuelve la venta con sus ítems en orden de inserción.
func (r *SaleRepo) GetByID(ctx context.Context, userID, id int64) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx,
		`SELECT id, user_id, date, total_amount, payment_method FROM sales WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&s.ID, &s.UserID, &s.Date, &s.TotalAmount, &s.PaymentMethod)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.itemsOf(ctx, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

// ListByUser ventas del usuario en [from, to), más recientes primero, con sus ítems.
// from/to en cero = sin límite.
func (r *SaleRepo) ListByUser(ctx context.Context, userID int64, from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	const query = `
		SELECT id, user_id, date, total_amount, payment_method
		FROM sales
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <  $3)
		ORDER BY date DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, userID, nullTime(from), nullTime(to), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sale
	var ids []int64
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.TotalAmount, &s.PaymentMethod); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.itemsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		s.Items = items[s.ID]
	}
	return list, nil
}

func (r *SaleRepo) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sale items exist: %w", err)
	}
	return exists, nil
}

func (r *SaleRepo) itemsOf(ctx context.Context, saleIDs []int64) (map[int64][]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, cost_price
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY id`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	out := make(map[int64][]entity.SaleItem, len(saleIDs))
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CostPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out[it.SaleID] = append(out[it.SaleID], it)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nowUTC() time.Time { return time.Now().UTC() }
