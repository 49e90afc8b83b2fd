package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo tickets de soporte.
type TicketRepo struct {
	q Querier
}

func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketColumns = `id, user_id, subject, message, status, created_at, closed_at`

func (r *TicketRepo) Create(ctx context.Context, t *entity.SupportTicket) error {
	const query = `
		INSERT INTO support_tickets (user_id, subject, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	if err := r.q.QueryRow(ctx, query, t.UserID, t.Subject, t.Message, t.Status).Scan(&t.ID, &t.CreatedAt); err != nil {
		return mapError("insert ticket", err)
	}
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id int64) (*entity.SupportTicket, error) {
	var t entity.SupportTicket
	err := r.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.CreatedAt, &t.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.SupportTicket, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets by user: %w", err)
	}
	return collectTickets(rows)
}

// List todos los tickets; status vacío = sin filtro.
func (r *TicketRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.SupportTicket, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+ticketColumns+` FROM support_tickets
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return collectTickets(rows)
}

func (r *TicketRepo) Close(ctx context.Context, id int64, closedAt time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE support_tickets SET status = $2, closed_at = $3 WHERE id = $1`, id, entity.TicketClosed, closedAt)
	if err != nil {
		return fmt.Errorf("close ticket: %w", err)
	}
	return nil
}

func collectTickets(rows pgx.Rows) ([]*entity.SupportTicket, error) {
	defer rows.Close()
	var list []*entity.SupportTicket
	for rows.Next() {
		var t entity.SupportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.CreatedAt, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
