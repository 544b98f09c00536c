package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContacts struct {
	contact.Service
	all []*contact.Contact
}

func (f *fakeContacts) List(_ context.Context, id *access.Identity) ([]*contact.Contact, error) {
	return access.VisibleSet(access.Policy{}, id, f.all), nil
}

func (f *fakeContacts) Get(_ context.Context, id *access.Identity, contactID uuid.UUID) (*contact.Contact, error) {
	for _, c := range f.all {
		if c.ID == contactID {
			if !(access.Policy{}).CanView(id, c) {
				return nil, access.ErrAccessDenied
			}
			return c, nil
		}
	}
	return nil, contact.ErrNotFound
}

var (
	user  = &access.Identity{ID: "u1", Email: "alice@bn-group.gr", Role: access.RoleUser}
	admin = &access.Identity{ID: "a1", Email: "boss@bn-group.gr", Role: access.RoleAdmin}
)

func newTestRouter(all []*contact.Contact) *chi.Mux {
	h := NewHandler(&fakeContacts{all: all}, "backoffice@yourcompany.com", nil)
	h.now = func() time.Time { return day }
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func do(r http.Handler, id *access.Identity, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(access.WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func owned() []*contact.Contact {
	cs := sampleContacts()
	cs[0].ID, cs[0].OwnerID = uuid.New(), "u1"
	cs[1].ID, cs[1].OwnerID = uuid.New(), "u2"
	cs[2].ID, cs[2].OwnerID = uuid.New(), "u1"
	return cs
}

func TestStats_AdminOnly(t *testing.T) {
	r := newTestRouter(owned())

	assert.Equal(t, http.StatusForbidden, do(r, user, "/api/v1/reports/stats").Code)

	rec := do(r, admin, "/api/v1/reports/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var s Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.HighPriority)
}

func TestExportCSV_VisibleAndFiltered(t *testing.T) {
	r := newTestRouter(owned())

	rec := do(r, user, "/api/v1/reports/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="contacts-2026-03-02.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, 3, strings.Count(rec.Body.String(), "\n"), "header plus the caller's two contacts")

	rec = do(r, admin, "/api/v1/reports/export.csv?priority=low")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Maria"`)
	assert.Equal(t, "1", rec.Header().Get("X-Export-Count"))
}

func TestExportCSV_EmptyIsRefused(t *testing.T) {
	r := newTestRouter(owned())
	rec := do(r, user, "/api/v1/reports/export.csv?q=nobody")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No contacts to export")
}

func TestExportXLSX_AdminOnly(t *testing.T) {
	r := newTestRouter(owned())
	assert.Equal(t, http.StatusForbidden, do(r, user, "/api/v1/reports/export.xlsx").Code)

	rec := do(r, admin, "/api/v1/reports/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestShare(t *testing.T) {
	cs := owned()
	r := newTestRouter(cs)

	rec := do(r, user, "/api/v1/contacts/"+cs[0].ID.String()+"/share")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Share Share `json:"share"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Exhibition Lead: Alex", body.Share.Subject)
	assert.True(t, strings.HasPrefix(body.Share.Mailto, "mailto:backoffice@yourcompany.com?subject="))

	assert.Equal(t, http.StatusForbidden, do(r, user, "/api/v1/contacts/"+cs[1].ID.String()+"/share").Code)
	assert.Equal(t, http.StatusNotFound, do(r, user, "/api/v1/contacts/"+uuid.NewString()+"/share").Code)
}
