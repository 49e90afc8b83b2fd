package dto

import "time"

// CreateTicketRequest body de POST /api/tickets.
type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"required,min=3,max=150"`
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// TicketResponse salida de un ticket de soporte.
type TicketResponse struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}
