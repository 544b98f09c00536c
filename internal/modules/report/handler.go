package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
	"github.com/georgemunganga/exhibition-crm/internal/modules/search"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves statistics, exports and back-office share messages.
type Handler struct {
	contacts   contact.Service
	backoffice string
	log        *zap.Logger
	now        func() time.Time
}

func NewHandler(contacts contact.Service, backoffice string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{contacts: contacts, backoffice: backoffice, log: log, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/stats", h.stats)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/export.xlsx", h.exportXLSX)
	})
	r.Get("/api/v1/contacts/{id}/share", h.share)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	id := access.FromContext(r.Context())
	if !id.IsAdmin() {
		respond(w, http.StatusForbidden, envelope{"notice": notice{"error", "Statistics are available to admins only"}})
		return
	}
	all, err := h.contacts.List(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, Compute(all))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	contacts, ok := h.exportSet(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+FileName(h.now(), "csv")+`"`)
	w.Header().Set("X-Export-Count", strconv.Itoa(len(contacts)))
	w.WriteHeader(http.StatusOK)
	w.Write(CSV(contacts))
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	if !access.FromContext(r.Context()).IsAdmin() {
		respond(w, http.StatusForbidden, envelope{"notice": notice{"error", "Spreadsheet export is available to admins only"}})
		return
	}
	contacts, ok := h.exportSet(w, r)
	if !ok {
		return
	}
	data, err := XLSX(contacts)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+FileName(h.now(), "xlsx")+`"`)
	w.Header().Set("X-Export-Count", strconv.Itoa(len(contacts)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) share(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid contact id", http.StatusBadRequest)
		return
	}
	c, err := h.contacts.Get(r.Context(), access.FromContext(r.Context()), contactID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"share":  ShareMessage(c, h.backoffice),
		"notice": notice{"success", "Opening email client..."},
	})
}

// ── helpers ──

type envelope map[string]interface{}

type notice struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// exportSet loads the caller's visible contacts filtered like the list view.
// An empty set is refused.
func (h *Handler) exportSet(w http.ResponseWriter, r *http.Request) ([]*contact.Contact, bool) {
	id := access.FromContext(r.Context())
	crit, err := search.CriteriaFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	all, err := h.contacts.List(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	contacts := search.Apply(all, crit.ForCaller(id))
	if len(contacts) == 0 {
		respond(w, http.StatusUnprocessableEntity, envelope{"notice": notice{"warning", "No contacts to export"}})
		return nil, false
	}
	h.log.Info("exporting contacts", zap.String("by", id.ID), zap.Int("count", len(contacts)))
	return contacts, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrAccessDenied):
		respond(w, http.StatusForbidden, envelope{"notice": notice{"error", "You do not have access to this contact"}})
	case errors.Is(err, contact.ErrNotFound):
		respond(w, http.StatusNotFound, envelope{"notice": notice{"error", err.Error()}})
	default:
		h.log.Error("report request failed", zap.Error(err))
		respond(w, http.StatusInternalServerError, envelope{"notice": notice{"error", err.Error()}})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
