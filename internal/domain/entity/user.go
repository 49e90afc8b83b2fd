package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User representa una cuenta del sistema; cada usuario es dueño de su catálogo.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // bcrypt hash
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	Role         string // user, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol administrador.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
