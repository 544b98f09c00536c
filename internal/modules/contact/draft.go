package contact

import (
	"strings"

	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/google/uuid"
)

const (
	defaultPriority     = 5
	defaultBusinessType = BusinessApartments
	defaultKind         = KindChair
)

// Fields are the scalar contact fields edited on the form.
type Fields struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Company      string       `json:"company"`
	BusinessType BusinessType `json:"business_type"`
	Priority     int          `json:"priority"`
	Notes        string       `json:"notes"`
}

// ProductForm is the product input buffer.
type ProductForm struct {
	Kind    ProductKind     `json:"kind"`
	Custom  string          `json:"custom,omitempty"`
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	Pieces  string          `json:"pieces"`
	Details string          `json:"details"`
	Photos  []string        `json:"photos"`
	Pending []photo.Pending `json:"pending"`
}

func (f ProductForm) Type() ProductType { return ProductType{Kind: f.Kind, Custom: f.Custom} }

func emptyForm() ProductForm { return ProductForm{Kind: defaultKind} }

// Draft is a contact being captured or edited. Drafts are values: every
// transform below returns a new Draft and leaves its argument untouched.
type Draft struct {
	ID        string    `json:"id"`
	ContactID uuid.UUID `json:"contact_id"` // uuid.Nil while creating
	OwnerID   string    `json:"owner_id"`
	Fields
	Products []Product       `json:"products"`
	Photos   []PhotoRef      `json:"photos"`
	Pending  []photo.Pending `json:"pending"`
	Form     ProductForm     `json:"form"`
	// Editing is the id of the product loaded into Form, 0 when none.
	Editing       int `json:"editing"`
	NextProductID int `json:"next_product_id"`
}

// IsUpdate reports whether submitting the draft updates an existing contact.
func (d Draft) IsUpdate() bool { return d.ContactID != uuid.Nil }

// PendingCount is the number of photos that will be uploaded on submit.
func (d Draft) PendingCount() int {
	n := len(d.Pending)
	for _, p := range d.Products {
		n += len(p.Pending)
	}
	return n
}

// NewDraft returns an empty create-mode draft.
func NewDraft(ownerID string) Draft {
	return Draft{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Fields:        Fields{Priority: defaultPriority, BusinessType: defaultBusinessType},
		Products:      []Product{},
		Photos:        []PhotoRef{},
		Form:          emptyForm(),
		NextProductID: 1,
	}
}

// FromContact opens an edit-mode draft over an existing contact.
func FromContact(c *Contact, ownerID string) Draft {
	d := NewDraft(ownerID)
	d.ContactID = c.ID
	d.Fields = Fields{
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Company:      c.Company,
		BusinessType: c.BusinessType,
		Priority:     c.Priority,
		Notes:        c.Notes,
	}
	for _, p := range c.Products {
		d.Products = append(d.Products, cloneProduct(p))
		if p.ID >= d.NextProductID {
			d.NextProductID = p.ID + 1
		}
	}
	d.Photos = append(d.Photos, c.Photos...)
	return d
}

// Reset clears d to an empty template, keeping its id and owner.
func Reset(d Draft) Draft {
	n := NewDraft(d.OwnerID)
	n.ID = d.ID
	return n
}

func SetFields(d Draft, f Fields) Draft {
	n := d.clone()
	n.Fields = f
	return n
}

// SetForm replaces the text of the product buffer. Photos already in the
// buffer stay.
func SetForm(d Draft, form ProductForm) Draft {
	n := d.clone()
	photos, pending := n.Form.Photos, n.Form.Pending
	n.Form = form
	n.Form.Photos, n.Form.Pending = photos, pending
	if n.Form.Kind != KindOther {
		n.Form.Custom = ""
	}
	return n
}

// AddFormPhoto buffers a captured photo on the product being entered.
func AddFormPhoto(d Draft, data []byte) Draft {
	n := d.clone()
	n.Form.Pending = append(n.Form.Pending, photo.Pending{Data: data, Tag: photo.TagProduct})
	return n
}

// RemoveFormPhoto drops the index-th buffered product photo. Stored photos
// come first, then pending ones.
func RemoveFormPhoto(d Draft, index int) (Draft, error) {
	stored := len(d.Form.Photos)
	if index < 0 || index >= stored+len(d.Form.Pending) {
		return d, invalid(RulePhotoIndex, "No photo at position %d", index)
	}
	n := d.clone()
	if index < stored {
		n.Form.Photos = append(n.Form.Photos[:index], n.Form.Photos[index+1:]...)
	} else {
		i := index - stored
		n.Form.Pending = append(n.Form.Pending[:i], n.Form.Pending[i+1:]...)
	}
	return n, nil
}

// AddContactPhoto buffers a photo on the contact itself, typically a business card.
func AddContactPhoto(d Draft, data []byte, tag photo.Tag) Draft {
	n := d.clone()
	n.Pending = append(n.Pending, photo.Pending{Data: data, Tag: tag})
	return n
}

// AddProduct commits the product buffer. In edit mode the product being
// edited is replaced in place, otherwise a product with a fresh id is
// appended. The buffer is cleared either way.
func AddProduct(d Draft) (Draft, error) {
	if err := validateForm(d.Form); err != nil {
		return d, err
	}

	n := d.clone()
	p := Product{
		Type:    ProductType{Kind: n.Form.Kind, Custom: strings.TrimSpace(n.Form.Custom)},
		Name:    strings.TrimSpace(n.Form.Name),
		Color:   n.Form.Color,
		Pieces:  n.Form.Pieces,
		Details: n.Form.Details,
		Photos:  append([]string{}, n.Form.Photos...),
		Pending: append([]photo.Pending(nil), n.Form.Pending...),
	}
	if p.Type.Kind != KindOther {
		p.Type.Custom = ""
	}

	replaced := false
	if n.Editing != 0 {
		for i := range n.Products {
			if n.Products[i].ID == n.Editing {
				p.ID = n.Editing
				n.Products[i] = p
				replaced = true
				break
			}
		}
	}
	if !replaced {
		p.ID = n.NextProductID
		n.NextProductID++
		n.Products = append(n.Products, p)
	}

	n.Form = emptyForm()
	n.Editing = 0
	return n, nil
}

// EditProduct loads a product back into the buffer and marks it as being edited.
func EditProduct(d Draft, productID int) (Draft, error) {
	i := d.productIndex(productID)
	if i < 0 {
		return d, ErrProductNotFound
	}
	n := d.clone()
	p := n.Products[i]
	n.Form = ProductForm{
		Kind:    p.Type.Kind,
		Custom:  p.Type.Custom,
		Name:    p.Name,
		Color:   p.Color,
		Pieces:  p.Pieces,
		Details: p.Details,
		Photos:  append([]string{}, p.Photos...),
		Pending: append([]photo.Pending(nil), p.Pending...),
	}
	n.Editing = productID
	return n, nil
}

// CancelEdit leaves edit mode and clears the buffer.
func CancelEdit(d Draft) Draft {
	n := d.clone()
	n.Form = emptyForm()
	n.Editing = 0
	return n
}

// RemoveProduct deletes a product by id. The id is not handed out again.
func RemoveProduct(d Draft, productID int, confirmed bool) (Draft, error) {
	if !confirmed {
		return d, ErrConfirmationRequired
	}
	i := d.productIndex(productID)
	if i < 0 {
		return d, ErrProductNotFound
	}
	n := d.clone()
	n.Products = append(n.Products[:i], n.Products[i+1:]...)
	if n.Editing == productID {
		n.Form = emptyForm()
		n.Editing = 0
	}
	return n, nil
}

func (d Draft) productIndex(id int) int {
	for i, p := range d.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ── copying ──

func (d Draft) clone() Draft {
	n := d
	n.Products = make([]Product, len(d.Products))
	for i, p := range d.Products {
		n.Products[i] = cloneProduct(p)
	}
	n.Photos = append([]PhotoRef{}, d.Photos...)
	n.Pending = append([]photo.Pending(nil), d.Pending...)
	n.Form.Photos = append([]string(nil), d.Form.Photos...)
	n.Form.Pending = append([]photo.Pending(nil), d.Form.Pending...)
	return n
}

func cloneProduct(p Product) Product {
	p.Photos = append([]string{}, p.Photos...)
	p.Pending = append([]photo.Pending(nil), p.Pending...)
	return p
}
