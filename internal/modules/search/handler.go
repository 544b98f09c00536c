package search

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
	"github.com/go-chi/chi/v5"
)

// Handler serves the filtered contact list.
type Handler struct{ contacts contact.Service }

func NewHandler(contacts contact.Service) *Handler { return &Handler{contacts: contacts} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/contacts", h.list)
}

// CriteriaFromQuery reads q, business_type, priority and owner.
func CriteriaFromQuery(r *http.Request) (Criteria, error) {
	q := r.URL.Query()
	band, err := ParseBand(q.Get("priority"))
	if err != nil {
		return Criteria{}, err
	}
	return Criteria{
		Text:         q.Get("q"),
		BusinessType: q.Get("business_type"),
		Band:         band,
		Owner:        q.Get("owner"),
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id := access.FromContext(r.Context())
	crit, err := CriteriaFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	all, err := h.contacts.List(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, access.ErrAccessDenied) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	filtered := Apply(all, crit.ForCaller(id))
	body := map[string]interface{}{
		"contacts": filtered,
		"total":    len(filtered),
	}
	if id.IsAdmin() {
		body["owners"] = Owners(all)
	}
	respond(w, http.StatusOK, body)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
