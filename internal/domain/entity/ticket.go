package entity

import "time"

// Estados de un ticket de soporte.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// SupportTicket solicitud de soporte creada por un usuario.
type SupportTicket struct {
	ID        int64
	UserID    int64
	Subject   string
	Message   string
	Status    string
	CreatedAt time.Time
	ClosedAt  *time.Time
}
