package user

import (
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/google/uuid"
)

// User is a sales account. Role is fixed at creation; admins are promoted in
// the store, never through registration.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FirstName    string      `json:"first_name,omitempty"`
	LastName     string      `json:"last_name,omitempty"`
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Identity is the access identity of u.
func (u *User) Identity() *access.Identity {
	return &access.Identity{ID: u.ID.String(), Email: u.Email, Role: access.ParseRole(string(u.Role))}
}
