package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrDomainNotAllowed = errors.New("email domain is not allowed to register")
	ErrWeakPassword     = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrInvalidEmail     = errors.New("invalid email address")
)

type service struct {
	repo         Repository
	signupDomain string
}

// NewService creates a new user service. A non-empty signupDomain restricts
// registration to addresses at that domain.
func NewService(repo Repository, signupDomain string) Service {
	return &service{repo: repo, signupDomain: strings.ToLower(strings.TrimPrefix(signupDomain, "@"))}
}

func (s *service) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, ErrInvalidEmail
	}
	if s.signupDomain != "" && email[at+1:] != s.signupDomain {
		return nil, ErrDomainNotAllowed
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         access.RoleUser,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}
