package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contactCols = []string{
	"id", "name", "email", "phone", "company", "business_type", "priority", "notes",
	"products", "photos", "owner_id", "sales_person", "created_at", "updated_at",
}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresRepo_ListScopedByOwner(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM contacts WHERE owner_id=\$1 ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow(
			id.String(), "Alex", "a@x.com", "5551234567", "Acme", "hotels", 8, "",
			[]byte(`[{"id":1,"type":"Daybed","name":"Bali","photos":["https://cdn/p.jpg"]}]`),
			[]byte(`[{"url":"https://cdn/c.jpg","tag":"business-card"}]`),
			"u1", "alice@bn-group.gr", now, now,
		))

	contacts, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	c := contacts[0]
	assert.Equal(t, id, c.ID)
	assert.Equal(t, BusinessHotels, c.BusinessType)
	assert.Equal(t, 8, c.Priority)
	require.Len(t, c.Products, 1)
	assert.Equal(t, ProductType{Kind: KindOther, Custom: "Daybed"}, c.Products[0].Type)
	assert.Equal(t, []string{"https://cdn/p.jpg"}, c.Products[0].Photos)
	assert.Equal(t, []PhotoRef{{URL: "https://cdn/c.jpg", Tag: photo.TagBusinessCard}}, c.Photos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ListAllForAdmin(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM contacts ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(contactCols).
			AddRow(uuid.NewString(), "New", "", "", "", "apartments", 5, "", nil, nil, "u2", "b@x", now, now).
			AddRow(uuid.NewString(), "Old", "", "", "", "apartments", 5, "", []byte(`[]`), []byte(`[]`), "u1", "a@x", now, now))

	contacts, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "New", contacts[0].Name)
	assert.NotNil(t, contacts[0].Products)
	assert.NotNil(t, contacts[0].Photos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetByIDNotFound(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM contacts WHERE id=\$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(contactCols))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CreateReturnsStoreAssignedFields(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs("Alex", "a@x.com", "5551234567", "", "apartments", 5, "",
			[]byte(`[]`), []byte(`[]`), "u1", "alice@bn-group.gr").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), created, created))

	c := &Contact{
		Name: "Alex", Email: "a@x.com", Phone: "5551234567", BusinessType: BusinessApartments,
		Priority: 5, OwnerID: "u1", SalesPerson: "alice@bn-group.gr",
	}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, id, c.ID)
	assert.Equal(t, created, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CreateDropsPendingBuffers(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`INSERT INTO contacts`).
		WithArgs("Alex", "", "", "", "apartments", 5, "",
			[]byte(`[{"id":1,"type":"sofa","photos":[]}]`), []byte(`[]`), "u1", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.NewString(), time.Now(), time.Now()))

	c := &Contact{
		Name: "Alex", BusinessType: BusinessApartments, Priority: 5, OwnerID: "u1",
		Products: []Product{{ID: 1, Type: ProductType{Kind: KindSofa}, Pending: []photo.Pending{{Data: []byte("x")}}}},
	}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateMissingRow(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE contacts`).
		WithArgs("Alex", "", "", "", "hotels", 7, "", sqlmock.AnyArg(), sqlmock.AnyArg(), id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := repo.Update(context.Background(), &Contact{ID: id, Name: "Alex", BusinessType: BusinessHotels, Priority: 7})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Delete(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM contacts WHERE id=\$1`).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM contacts WHERE id=\$1`).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM contacts WHERE id=\$1`).WithArgs(id.String()).WillReturnError(errors.New("conn closed"))

	assert.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)
	assert.EqualError(t, repo.Delete(context.Background(), id), "conn closed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
