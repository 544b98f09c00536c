package auth

import (
	"context"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
}

// Session is a signed bearer token and the identity it carries.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Identity  *access.Identity `json:"identity"`
}
