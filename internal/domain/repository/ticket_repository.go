package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// TicketRepository define el puerto de persistencia para tickets de soporte.
type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.SupportTicket) error
	GetByID(ctx context.Context, id int64) (*entity.SupportTicket, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.SupportTicket, error)
	// List lista todos los tickets; status vacío = sin filtro.
	List(ctx context.Context, status string, limit, offset int) ([]*entity.SupportTicket, error)
	Close(ctx context.Context, id int64, closedAt time.Time) error
}
