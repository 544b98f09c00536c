package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/georgemunganga/exhibition-crm/internal/platform/lock"
	"github.com/georgemunganga/exhibition-crm/internal/platform/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// uploadBudget bounds the photo batch of one submit and stays well below
// submitLockTTL so the lock is still held when the store write runs.
const (
	submitLockTTL = 2 * time.Minute
	uploadBudget  = time.Minute
)

// Service is the contact aggregate manager. Every read and write goes through
// the access policy.
type Service interface {
	List(ctx context.Context, id *access.Identity) ([]*Contact, error)
	Get(ctx context.Context, id *access.Identity, contactID uuid.UUID) (*Contact, error)
	// OpenDraft starts a create draft, or an edit draft when contactID is set.
	OpenDraft(ctx context.Context, id *access.Identity, contactID *uuid.UUID) (Draft, error)
	// Submit validates, deduplicates, uploads pending photos and persists d.
	// A *DuplicateWarning stops the commit unless override is set.
	Submit(ctx context.Context, id *access.Identity, d Draft, override bool) (*SubmitResult, error)
	SubmitWithOverride(ctx context.Context, id *access.Identity, d Draft) (*SubmitResult, error)
	Delete(ctx context.Context, id *access.Identity, contactID uuid.UUID, confirmed bool) error
}

// SubmitResult is a committed contact, the reset draft and any photos that
// could not be stored. Unidentified lists products saved with neither a name
// nor a photo because every one of their photos was dropped.
type SubmitResult struct {
	Contact       *Contact        `json:"contact"`
	Draft         Draft           `json:"draft"`
	DroppedPhotos []photo.Failure `json:"-"`
	Unidentified  []int           `json:"unidentified,omitempty"`
}

type service struct {
	repo         Repository
	uploader     *photo.Pipeline
	locker       lock.Locker
	policy       access.Policy
	log          *zap.Logger
	uploadBudget time.Duration
}

func NewService(repo Repository, uploader *photo.Pipeline, locker lock.Locker, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, uploader: uploader, locker: locker, log: log, uploadBudget: uploadBudget}
}

func (s *service) List(ctx context.Context, id *access.Identity) ([]*Contact, error) {
	if id == nil {
		return nil, access.ErrAccessDenied
	}
	all, err := s.repo.List(ctx, s.policy.OwnerScope(id))
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return access.VisibleSet(s.policy, id, all), nil
}

func (s *service) Get(ctx context.Context, id *access.Identity, contactID uuid.UUID) (*Contact, error) {
	if id == nil {
		return nil, access.ErrAccessDenied
	}
	c, err := s.repo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if !s.policy.CanView(id, c) {
		return nil, access.ErrAccessDenied
	}
	return c, nil
}

func (s *service) OpenDraft(ctx context.Context, id *access.Identity, contactID *uuid.UUID) (Draft, error) {
	if id == nil {
		return Draft{}, access.ErrAccessDenied
	}
	if contactID == nil || *contactID == uuid.Nil {
		return NewDraft(id.ID), nil
	}
	c, err := s.Get(ctx, id, *contactID)
	if err != nil {
		return Draft{}, err
	}
	if !s.policy.CanMutate(id, c) {
		return Draft{}, access.ErrAccessDenied
	}
	return FromContact(c, id.ID), nil
}

func (s *service) SubmitWithOverride(ctx context.Context, id *access.Identity, d Draft) (*SubmitResult, error) {
	return s.Submit(ctx, id, d, true)
}

func (s *service) Submit(ctx context.Context, id *access.Identity, d Draft, override bool) (*SubmitResult, error) {
	mode := "create"
	if d.IsUpdate() {
		mode = "update"
	}
	res, err := s.submit(ctx, id, d, override)
	metrics.Submits.WithLabelValues(mode, submitOutcome(err)).Inc()
	return res, err
}

func (s *service) submit(ctx context.Context, id *access.Identity, d Draft, override bool) (*SubmitResult, error) {
	if id == nil {
		return nil, access.ErrAccessDenied
	}
	if err := validateFields(d.Fields); err != nil {
		return nil, err
	}

	release, ok, err := s.locker.Acquire(ctx, "submit:"+d.ID, submitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock draft %s: %w", d.ID, err)
	}
	if !ok {
		return nil, ErrSubmitInProgress
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.log.Warn("failed to release submit lock", zap.String("draft_id", d.ID), zap.Error(err))
		}
	}()

	var existing *Contact
	if d.IsUpdate() {
		existing, err = s.repo.GetByID(ctx, d.ContactID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, err
			}
			return nil, &PersistenceError{Op: "load", Err: err}
		}
		if !s.policy.CanMutate(id, existing) {
			return nil, access.ErrAccessDenied
		}
	}

	visible, err := s.List(ctx, id)
	if err != nil {
		return nil, err
	}
	if m := FindDuplicate(d.Email, d.Phone, d.ContactID, visible); m != nil && !override {
		return nil, &DuplicateWarning{Duplicate: m.Contact, Field: m.Field}
	}

	c, dropped := s.resolvePhotos(ctx, id, d)
	c.Name = d.Name
	c.Email = d.Email
	c.Phone = d.Phone
	c.Company = d.Company
	c.BusinessType = d.BusinessType
	c.Priority = d.Priority
	c.Notes = d.Notes

	// Once photos have settled the write goes through even if the caller gives up.
	storeCtx := context.WithoutCancel(ctx)
	if existing == nil {
		c.OwnerID = id.ID
		c.SalesPerson = id.Email
		if err := s.repo.Create(storeCtx, c); err != nil {
			return nil, &PersistenceError{Op: "create", Err: err}
		}
	} else {
		c.ID = existing.ID
		c.OwnerID = existing.OwnerID
		c.SalesPerson = existing.SalesPerson
		c.CreatedAt = existing.CreatedAt
		if err := s.repo.Update(storeCtx, c); err != nil {
			return nil, &PersistenceError{Op: "update", Err: err}
		}
	}

	unidentified := unidentifiedProducts(c.Products)
	if len(unidentified) > 0 {
		s.log.Warn("products saved without name or photos",
			zap.String("contact_id", c.ID.String()),
			zap.Ints("product_ids", unidentified))
	}

	s.log.Info("contact submitted",
		zap.String("contact_id", c.ID.String()),
		zap.String("owner_id", c.OwnerID),
		zap.Bool("update", existing != nil),
		zap.Bool("override", override),
		zap.Int("products", len(c.Products)),
		zap.Int("dropped_photos", len(dropped)))

	return &SubmitResult{Contact: c, Draft: Reset(d), DroppedPhotos: dropped, Unidentified: unidentified}, nil
}

// resolvePhotos uploads every pending buffer of d in one batch and splices the
// stored URLs back into a contact carrying d's products and photos.
func (s *service) resolvePhotos(ctx context.Context, id *access.Identity, d Draft) (*Contact, []photo.Failure) {
	c := &Contact{
		Products: make([]Product, len(d.Products)),
		Photos:   append([]PhotoRef{}, d.Photos...),
	}

	// target[i] is the product index the i-th buffer belongs to, -1 for the contact.
	var batch []photo.Pending
	var target []int
	for _, p := range d.Pending {
		batch = append(batch, p)
		target = append(target, -1)
	}
	for i, p := range d.Products {
		for _, ph := range p.Pending {
			if ph.Tag == "" {
				ph.Tag = photo.TagProduct
			}
			batch = append(batch, ph)
			target = append(target, i)
		}
		p = cloneProduct(p)
		p.Pending = nil
		c.Products[i] = p
	}

	if len(batch) == 0 {
		return c, nil
	}
	upCtx, cancel := context.WithTimeout(ctx, s.uploadBudget)
	defer cancel()
	res := s.uploader.Upload(upCtx, id.ID, batch)
	for _, r := range res.Resolved {
		if t := target[r.Index]; t < 0 {
			c.Photos = append(c.Photos, PhotoRef{URL: r.URL, Tag: r.Tag})
		} else {
			c.Products[t].Photos = append(c.Products[t].Photos, r.URL)
		}
	}
	return c, res.Failures
}

func unidentifiedProducts(products []Product) []int {
	var ids []int
	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" && len(p.Photos) == 0 {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (s *service) Delete(ctx context.Context, id *access.Identity, contactID uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	c, err := s.Get(ctx, id, contactID)
	if err != nil {
		return err
	}
	if !s.policy.CanMutate(id, c) {
		return access.ErrAccessDenied
	}
	if err := s.repo.Delete(ctx, contactID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.log.Info("contact deleted", zap.String("contact_id", contactID.String()), zap.String("by", id.ID))
	return nil
}

func submitOutcome(err error) string {
	var validation *ValidationError
	var duplicate *DuplicateWarning
	var persistence *PersistenceError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &duplicate):
		return "duplicate"
	case errors.Is(err, access.ErrAccessDenied):
		return "denied"
	case errors.Is(err, ErrSubmitInProgress):
		return "in_progress"
	case errors.As(err, &persistence):
		return "store_error"
	default:
		return "error"
	}
}
