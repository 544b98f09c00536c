package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := NewService().Get()

	assert.Equal(t, []Option{
		{Value: "apartments", Label: "Apartments"},
		{Value: "airbnbs", Label: "Airbnbs"},
		{Value: "hotels", Label: "Hotels"},
		{Value: "cafe-restaurant", Label: "Cafe/Restaurant"},
	}, c.BusinessTypes)

	require.Len(t, c.ProductKinds, 8)
	assert.Equal(t, Option{Value: "side table", Label: "Side Table"}, c.ProductKinds[4])
	assert.Equal(t, "other", c.ProductKinds[7].Value)

	require.Len(t, c.PriorityBands, 3)
	assert.Equal(t, PriorityBand{Value: "high", Label: "High (8-10)", Min: 8, Max: 10}, c.PriorityBands[0])
	assert.Equal(t, 5, c.DefaultPriority)
}

func TestCatalogHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(NewService()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, NewService().Get(), got)
}
