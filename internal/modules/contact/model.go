package contact

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/google/uuid"
)

// BusinessType is the kind of venue a lead runs.
type BusinessType string

const (
	BusinessApartments     BusinessType = "apartments"
	BusinessAirbnbs        BusinessType = "airbnbs"
	BusinessHotels         BusinessType = "hotels"
	BusinessCafeRestaurant BusinessType = "cafe-restaurant"
)

// BusinessTypes lists every accepted business type in display order.
var BusinessTypes = []BusinessType{BusinessApartments, BusinessAirbnbs, BusinessHotels, BusinessCafeRestaurant}

func (b BusinessType) Valid() bool {
	for _, t := range BusinessTypes {
		if b == t {
			return true
		}
	}
	return false
}

// ProductKind is the furniture category picked on the product form.
type ProductKind string

const (
	KindChair      ProductKind = "chair"
	KindArmchair   ProductKind = "armchair"
	KindSofa       ProductKind = "sofa"
	KindTable      ProductKind = "table"
	KindSideTable  ProductKind = "side table"
	KindSunlounger ProductKind = "sunlounger"
	KindUmbrella   ProductKind = "umbrella"
	KindOther      ProductKind = "other"
)

var ProductKinds = []ProductKind{
	KindChair, KindArmchair, KindSofa, KindTable, KindSideTable, KindSunlounger, KindUmbrella, KindOther,
}

func (k ProductKind) Valid() bool {
	for _, known := range ProductKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ProductType is a known kind, or free text carried by the other kind.
type ProductType struct {
	Kind   ProductKind
	Custom string
}

// Resolve returns the label stored on commit: the custom text for other,
// the kind itself otherwise.
func (t ProductType) Resolve() string {
	if t.Kind == KindOther {
		return strings.TrimSpace(t.Custom)
	}
	return string(t.Kind)
}

// ParseProductType reads a stored label back. Labels outside the known kinds
// become other with the label as custom text.
func ParseProductType(s string) ProductType {
	s = strings.TrimSpace(s)
	for _, k := range ProductKinds {
		if k != KindOther && string(k) == s {
			return ProductType{Kind: k}
		}
	}
	return ProductType{Kind: KindOther, Custom: s}
}

func (t ProductType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Resolve())
}

func (t *ProductType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseProductType(s)
	return nil
}

// Product is an item of interest attached to a contact. IDs are local to the
// owning contact and never reused.
type Product struct {
	ID      int             `json:"id"`
	Type    ProductType     `json:"type"`
	Name    string          `json:"name,omitempty"`
	Color   string          `json:"color,omitempty"`
	Pieces  string          `json:"pieces,omitempty"`
	Details string          `json:"details,omitempty"`
	Photos  []string        `json:"photos"`
	Pending []photo.Pending `json:"pending,omitempty"`
}

// PhotoCount counts resolved and pending photos.
func (p Product) PhotoCount() int { return len(p.Photos) + len(p.Pending) }

// PhotoRef is a stored photo attached directly to a contact.
type PhotoRef struct {
	URL string    `json:"url"`
	Tag photo.Tag `json:"tag"`
}

// Contact is a lead captured at an exhibition.
type Contact struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Company      string       `json:"company"`
	BusinessType BusinessType `json:"business_type"`
	Priority     int          `json:"priority"`
	Notes        string       `json:"notes"`
	Products     []Product    `json:"products"`
	Photos       []PhotoRef   `json:"photos"`
	OwnerID      string       `json:"owner_id"`
	SalesPerson  string       `json:"sales_person"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (c *Contact) OwnerKey() string { return c.OwnerID }

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
