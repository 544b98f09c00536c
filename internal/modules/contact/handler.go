package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/georgemunganga/exhibition-crm/internal/platform/lock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxPhotoBytes = 10 << 20

// A draft lock covers load, change and save of one draft. Its TTL outlives a
// submit, whose uploads are bounded by uploadBudget.
const (
	draftLockTTL  = submitLockTTL
	draftLockWait = 2 * time.Second
	draftLockPoll = 25 * time.Millisecond
)

// Handler exposes contact and draft HTTP endpoints. Routes expect an
// authenticated identity on the request context.
type Handler struct {
	service Service
	drafts  DraftStore
	locker  lock.Locker
	log     *zap.Logger
}

func NewHandler(service Service, drafts DraftStore, locker lock.Locker, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, drafts: drafts, locker: locker, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/contacts/{id}", h.getContact)
	r.Delete("/api/v1/contacts/{id}", h.deleteContact)

	r.Route("/api/v1/drafts", func(r chi.Router) {
		r.Post("/", h.openDraft)
		r.Get("/{id}", h.getDraft)
		r.Delete("/{id}", h.discardDraft)
		r.Put("/{id}/fields", h.setFields)
		r.Put("/{id}/form", h.setForm)
		r.Post("/{id}/form/cancel", h.cancelEdit)
		r.Post("/{id}/form/photos", h.addFormPhoto)
		r.Delete("/{id}/form/photos/{index}", h.removeFormPhoto)
		r.Post("/{id}/photos", h.addContactPhoto)
		r.Post("/{id}/products", h.addProduct)
		r.Post("/{id}/products/{pid}/edit", h.editProduct)
		r.Delete("/{id}/products/{pid}", h.removeProduct)
		r.Post("/{id}/submit", h.submit)
	})
}

// ── contacts ──

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, invalid("contact_id", "Invalid contact id"))
		return
	}
	c, err := h.service.Get(r.Context(), access.FromContext(r.Context()), contactID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, invalid("contact_id", "Invalid contact id"))
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.service.Delete(r.Context(), access.FromContext(r.Context()), contactID, confirmed); err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, envelope{"notice": success("Contact deleted successfully")})
}

// ── drafts ──

func (h *Handler) openDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContactID *uuid.UUID `json:"contact_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	d, err := h.service.OpenDraft(r.Context(), access.FromContext(r.Context()), req.ContactID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.drafts.Save(r.Context(), d); err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusCreated, envelope{"draft": redact(d)})
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.loadDraft(r.Context(), r)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond(w, http.StatusOK, envelope{"draft": redact(d)})
}

func (h *Handler) discardDraft(w http.ResponseWriter, r *http.Request) {
	release, err := h.lockDraft(r.Context(), chi.URLParam(r, "id"), draftLockWait)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer h.unlockDraft(release, chi.URLParam(r, "id"))

	d, err := h.loadDraft(r.Context(), r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.drafts.Delete(r.Context(), d.ID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setFields(w http.ResponseWriter, r *http.Request) {
	var f Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, "", func(d Draft) (Draft, error) { return SetFields(d, f), nil })
}

func (h *Handler) setForm(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, "", func(d Draft) (Draft, error) { return SetForm(d, form), nil })
}

func (h *Handler) cancelEdit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "", func(d Draft) (Draft, error) { return CancelEdit(d), nil })
}

func (h *Handler) addFormPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := readPhoto(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.mutate(w, r, "Photo captured!", func(d Draft) (Draft, error) { return AddFormPhoto(d, data), nil })
}

func (h *Handler) removeFormPhoto(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.fail(w, invalid(RulePhotoIndex, "Invalid photo index"))
		return
	}
	h.mutate(w, r, "", func(d Draft) (Draft, error) { return RemoveFormPhoto(d, index) })
}

func (h *Handler) addContactPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := readPhoto(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	tag := photo.ParseTag(r.URL.Query().Get("tag"))
	h.mutate(w, r, "Photo captured!", func(d Draft) (Draft, error) { return AddContactPhoto(d, data, tag), nil })
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "", AddProduct, func(before Draft) string {
		if before.Editing != 0 {
			return "Product updated successfully!"
		}
		return "Product added successfully!"
	})
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(chi.URLParam(r, "pid"))
	if err != nil {
		h.fail(w, ErrProductNotFound)
		return
	}
	h.mutate(w, r, "", func(d Draft) (Draft, error) { return EditProduct(d, pid) })
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(chi.URLParam(r, "pid"))
	if err != nil {
		h.fail(w, ErrProductNotFound)
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	h.mutate(w, r, "Product removed", func(d Draft) (Draft, error) { return RemoveProduct(d, pid, confirmed) })
}

// submit holds the draft lock from load until the reset draft is saved, so a
// second submit of the same draft either fails fast or sees the reset draft.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draftID := chi.URLParam(r, "id")
	release, err := h.lockDraft(ctx, draftID, 0)
	if errors.Is(err, ErrDraftBusy) {
		err = ErrSubmitInProgress
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	defer h.unlockDraft(release, draftID)

	d, err := h.loadDraft(ctx, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	override := r.URL.Query().Get("override") == "true"
	res, err := h.service.Submit(ctx, access.FromContext(ctx), d, override)
	if err != nil {
		h.fail(w, err)
		return
	}

	if err := h.drafts.Save(context.WithoutCancel(ctx), res.Draft); err != nil {
		h.log.Warn("failed to reset draft after submit", zap.String("draft_id", d.ID), zap.Error(err))
	}

	n := success("Contact saved successfully!")
	if d.IsUpdate() {
		n = success("Contact updated successfully!")
	}
	if len(res.DroppedPhotos) > 0 {
		n = warning(droppedNotice(len(res.DroppedPhotos), res.Unidentified))
	}
	status := http.StatusCreated
	if d.IsUpdate() {
		status = http.StatusOK
	}
	respond(w, status, envelope{"contact": res.Contact, "draft": redact(res.Draft), "notice": n})
}

// ── helpers ──

type envelope map[string]interface{}

// notice is the transient message the client shows after an operation.
type notice struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func success(msg string) notice { return notice{Severity: "success", Message: msg} }
func warning(msg string) notice { return notice{Severity: "warning", Message: msg} }
func failure(msg string) notice { return notice{Severity: "error", Message: msg} }

func droppedNotice(dropped int, unidentified []int) string {
	msg := fmt.Sprintf("Contact saved, but %d photo(s) could not be uploaded", dropped)
	if len(unidentified) == 0 {
		return msg
	}
	ids := make([]string, len(unidentified))
	for i, id := range unidentified {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%s; product %s lost all photos, identify manually", msg, strings.Join(ids, ", "))
}

// lockDraft takes the draft lock, polling for up to wait. It returns
// ErrDraftBusy when the lock is still held after that.
func (h *Handler) lockDraft(ctx context.Context, draftID string, wait time.Duration) (lock.Release, error) {
	deadline := time.Now().Add(wait)
	for {
		release, ok, err := h.locker.Acquire(ctx, "draft:"+draftID, draftLockTTL)
		if err != nil {
			return nil, fmt.Errorf("lock draft %s: %w", draftID, err)
		}
		if ok {
			return release, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrDraftBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(draftLockPoll):
		}
	}
}

func (h *Handler) unlockDraft(release lock.Release, draftID string) {
	if err := release(context.Background()); err != nil {
		h.log.Warn("failed to release draft lock", zap.String("draft_id", draftID), zap.Error(err))
	}
}

// mutate loads the caller's draft, applies fn and saves the result under the
// draft lock. The optional describe func derives the success notice from the
// draft before fn.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, ok string, fn func(Draft) (Draft, error), describe ...func(Draft) string) {
	ctx := r.Context()
	draftID := chi.URLParam(r, "id")
	release, err := h.lockDraft(ctx, draftID, draftLockWait)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer h.unlockDraft(release, draftID)

	d, err := h.loadDraft(ctx, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	n, err := fn(d)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.drafts.Save(ctx, n); err != nil {
		h.fail(w, err)
		return
	}

	if len(describe) > 0 {
		ok = describe[0](d)
	}
	body := envelope{"draft": redact(n)}
	if ok != "" {
		body["notice"] = success(ok)
	}
	respond(w, http.StatusOK, body)
}

// loadDraft fetches the draft named in the path. Drafts are private to the
// identity that opened them.
func (h *Handler) loadDraft(ctx context.Context, r *http.Request) (Draft, error) {
	id := access.FromContext(ctx)
	if id == nil {
		return Draft{}, access.ErrAccessDenied
	}
	d, err := h.drafts.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return Draft{}, err
	}
	if d.OwnerID != id.ID {
		return Draft{}, access.ErrAccessDenied
	}
	return d, nil
}

func readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPhotoBytes))
	if err != nil {
		return nil, invalid("photo_size", "Photo could not be read: %v", err)
	}
	if len(data) == 0 {
		return nil, invalid("photo_empty", "Photo is empty")
	}
	return data, nil
}

// redact drops image bytes from a draft before it is sent to the client.
func redact(d Draft) Draft {
	n := d.clone()
	for i := range n.Pending {
		n.Pending[i].Data = nil
	}
	for i := range n.Form.Pending {
		n.Form.Pending[i].Data = nil
	}
	for i := range n.Products {
		for j := range n.Products[i].Pending {
			n.Products[i].Pending[j].Data = nil
		}
	}
	return n
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var validation *ValidationError
	var duplicate *DuplicateWarning
	var persistence *PersistenceError

	switch {
	case errors.As(err, &validation):
		respond(w, http.StatusUnprocessableEntity, envelope{"rule": validation.Rule, "notice": failure(validation.Message)})
	case errors.As(err, &duplicate):
		respond(w, http.StatusConflict, envelope{
			"duplicate": envelope{"id": duplicate.Duplicate.ID, "name": duplicate.Duplicate.Name},
			"field":     duplicate.Field,
			"notice":    warning(fmt.Sprintf("A contact with this %s already exists: %s. Submit again with override=true to save anyway.", duplicate.Field, duplicate.Duplicate.Name)),
		})
	case errors.Is(err, access.ErrAccessDenied):
		respond(w, http.StatusForbidden, envelope{"notice": failure("You do not have access to this contact")})
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDraftNotFound), errors.Is(err, ErrProductNotFound):
		respond(w, http.StatusNotFound, envelope{"notice": failure(err.Error())})
	case errors.Is(err, ErrConfirmationRequired):
		respond(w, http.StatusPreconditionRequired, envelope{"notice": warning("Please confirm this action with confirm=true")})
	case errors.Is(err, ErrSubmitInProgress), errors.Is(err, ErrDraftBusy):
		respond(w, http.StatusConflict, envelope{"notice": warning(err.Error())})
	case errors.As(err, &persistence):
		h.log.Error("record store failure", zap.String("op", persistence.Op), zap.Error(persistence.Err))
		respond(w, http.StatusBadGateway, envelope{"notice": failure("Error saving contact: " + persistence.Err.Error())})
	default:
		h.log.Error("request failed", zap.Error(err))
		respond(w, http.StatusInternalServerError, envelope{"notice": failure(err.Error())})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
