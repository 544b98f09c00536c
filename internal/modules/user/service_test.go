package user

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	byEmail map[string]*User
}

func (m *memRepo) CreateUser(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	for _, u := range m.byEmail {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func TestRegisterUser(t *testing.T) {
	repo := &memRepo{byEmail: map[string]*User{}}
	svc := NewService(repo, "@bn-group.gr")
	ctx := context.Background()

	u, err := svc.RegisterUser(ctx, RegisterRequest{Email: " Alice@BN-Group.gr ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@bn-group.gr", u.Email)
	assert.Equal(t, access.RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))

	_, err = svc.RegisterUser(ctx, RegisterRequest{Email: "alice@bn-group.gr", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.RegisterUser(ctx, RegisterRequest{Email: "eve@gmail.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	_, err = svc.RegisterUser(ctx, RegisterRequest{Email: "eve@evil-bn-group.gr", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	_, err = svc.RegisterUser(ctx, RegisterRequest{Email: "bob@bn-group.gr", Password: "12345"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.RegisterUser(ctx, RegisterRequest{Email: "bob", Password: "123456"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	got, err := svc.GetUser(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestRegisterUser_AnyDomainWhenUnrestricted(t *testing.T) {
	svc := NewService(&memRepo{byEmail: map[string]*User{}}, "")
	_, err := svc.RegisterUser(context.Background(), RegisterRequest{Email: "x@example.com", Password: "123456"})
	assert.NoError(t, err)
}

func TestUserIdentity(t *testing.T) {
	id := uuid.New()
	u := &User{ID: id, Email: "boss@bn-group.gr", Role: access.RoleAdmin}
	assert.Equal(t, &access.Identity{ID: id.String(), Email: "boss@bn-group.gr", Role: access.RoleAdmin}, u.Identity())
}

func TestPostgresRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	err = repo.CreateUser(ctx, &User{ID: uuid.New(), Email: "a@bn-group.gr", Role: access.RoleUser})
	assert.ErrorIs(t, err, ErrEmailTaken)

	mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("ghost@bn-group.gr").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "role", "created_at", "updated_at"}))
	_, err = repo.GetUserByEmail(ctx, "ghost@bn-group.gr")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetUserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
