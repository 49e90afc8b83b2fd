package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// TicketUseCase tickets de soporte: alta y consulta por el usuario, cierre por administración.
type TicketUseCase struct {
	repo repository.TicketRepository
}

// NewTicketUseCase construye el caso de uso.
func NewTicketUseCase(repo repository.TicketRepository) *TicketUseCase {
	return &TicketUseCase{repo: repo}
}

// Create abre un ticket a nombre del usuario.
func (uc *TicketUseCase) Create(ctx context.Context, userID int64, in dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)
	if subject == "" || message == "" {
		return nil, domain.ErrInvalidInput
	}
	t := &entity.SupportTicket{
		UserID:    userID,
		Subject:   subject,
		Message:   message,
		Status:    entity.TicketOpen,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return toTicketResponse(t), nil
}

// ListMine tickets del usuario, más reciente primero.
func (uc *TicketUseCase) ListMine(ctx context.Context, userID int64) ([]dto.TicketResponse, error) {
	list, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toTicketList(list), nil
}

// ListAll tickets de todos los usuarios; status vacío = todos.
func (uc *TicketUseCase) ListAll(ctx context.Context, status string, limit, offset int) ([]dto.TicketResponse, error) {
	if status != "" && status != entity.TicketOpen && status != entity.TicketClosed {
		return nil, domain.ErrInvalidInput
	}
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toTicketList(list), nil
}

// Close cierra un ticket abierto. Cerrar uno ya cerrado devuelve ErrConflict.
func (uc *TicketUseCase) Close(ctx context.Context, id int64) (*dto.TicketResponse, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.Status == entity.TicketClosed {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	if err := uc.repo.Close(ctx, id, now); err != nil {
		return nil, err
	}
	t.Status = entity.TicketClosed
	t.ClosedAt = &now
	return toTicketResponse(t), nil
}

func toTicketList(list []*entity.SupportTicket) []dto.TicketResponse {
	out := make([]dto.TicketResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTicketResponse(t))
	}
	return out
}

func toTicketResponse(t *entity.SupportTicket) *dto.TicketResponse {
	return &dto.TicketResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Subject:   t.Subject,
		Message:   t.Message,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		ClosedAt:  t.ClosedAt,
	}
}
