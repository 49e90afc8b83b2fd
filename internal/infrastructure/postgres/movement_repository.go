package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo historial append-only (movement_history).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta el movimiento; Timestamp cero usa now() de la base.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	var ts any
	if !m.Timestamp.IsZero() {
		ts = m.Timestamp
	}
	const query = `
		INSERT INTO movement_history (product_id, user_id, movement_type, quantity_changed, final_stock, "timestamp")
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, now()))
		RETURNING id, "timestamp"`
	err := r.q.QueryRow(ctx, query, m.ProductID, m.UserID, m.Type, m.QuantityChanged, m.FinalStock, ts).Scan(&m.ID, &m.Timestamp)
	if err != nil {
		return mapError("insert movement", err)
	}
	return nil
}

// List movimientos del usuario, más recientes primero. ProductID 0 = todos.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	const query = `
		SELECT id, product_id, user_id, movement_type, quantity_changed, final_stock, "timestamp"
		FROM movement_history
		WHERE user_id = $1 AND ($2 = 0 OR product_id = $2)
		ORDER BY "timestamp" DESC, id DESC
		LIMIT $3 OFFSET $4`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, query, f.UserID, f.ProductID, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.UserID, &m.Type, &m.QuantityChanged, &m.FinalStock, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
