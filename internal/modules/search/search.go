// Package search filters a loaded contact list. Every call rescans the whole
// list; lead lists are small enough that no index is kept.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/georgemunganga/exhibition-crm/internal/modules/access"
	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
)

// Band is an inclusive priority range.
type Band struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

var (
	BandAll    = Band{Name: "all", Min: 1, Max: 10}
	BandLow    = Band{Name: "low", Min: 1, Max: 4}
	BandMedium = Band{Name: "medium", Min: 5, Max: 7}
	BandHigh   = Band{Name: "high", Min: 8, Max: 10}
)

// Bands lists the selectable bands, highest first.
var Bands = []Band{BandHigh, BandMedium, BandLow}

func (b Band) Label() string { return fmt.Sprintf("%d-%d", b.Min, b.Max) }

func (b Band) Contains(priority int) bool {
	return b == BandAll || (priority >= b.Min && priority <= b.Max)
}

// ParseBand accepts a band name or its numeric label such as "8-10".
// Blank means all.
func ParseBand(s string) (Band, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == BandAll.Name {
		return BandAll, nil
	}
	for _, b := range Bands {
		if s == b.Name || s == b.Label() {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("unknown priority band %q", s)
}

// Criteria are the active filters. Blank or "all" disables a filter.
type Criteria struct {
	Text         string
	BusinessType string
	Band         Band
	// Owner matches an owner id or sales person email. Only admins may set it.
	Owner string
}

// ForCaller drops filters the caller is not allowed to use.
func (c Criteria) ForCaller(id *access.Identity) Criteria {
	if !id.IsAdmin() {
		c.Owner = ""
	}
	return c
}

// Predicate reports whether a contact passes one filter.
type Predicate func(*contact.Contact) bool

// Predicates returns one predicate per active filter.
func (c Criteria) Predicates() []Predicate {
	var preds []Predicate
	if text := strings.TrimSpace(c.Text); text != "" {
		preds = append(preds, matchText(text))
	}
	if bt := strings.TrimSpace(c.BusinessType); bt != "" && bt != "all" {
		preds = append(preds, func(ct *contact.Contact) bool { return string(ct.BusinessType) == bt })
	}
	if c.Band != (Band{}) && c.Band != BandAll {
		band := c.Band
		preds = append(preds, func(ct *contact.Contact) bool { return band.Contains(ct.Priority) })
	}
	if owner := strings.TrimSpace(c.Owner); owner != "" && owner != "all" {
		preds = append(preds, func(ct *contact.Contact) bool { return ct.OwnerID == owner || ct.SalesPerson == owner })
	}
	return preds
}

// Apply returns the contacts passing every active filter, in input order.
func Apply(contacts []*contact.Contact, c Criteria) []*contact.Contact {
	return Filter(contacts, c.Predicates()...)
}

// Filter keeps the contacts for which every predicate holds.
func Filter(contacts []*contact.Contact, preds ...Predicate) []*contact.Contact {
	out := make([]*contact.Contact, 0, len(contacts))
next:
	for _, ct := range contacts {
		for _, p := range preds {
			if !p(ct) {
				continue next
			}
		}
		out = append(out, ct)
	}
	return out
}

func matchText(text string) Predicate {
	needle := strings.ToLower(text)
	digits := ""
	if phoneLike(text) {
		digits = contact.Digits(text)
	}
	return func(ct *contact.Contact) bool {
		if strings.Contains(strings.ToLower(ct.Name), needle) ||
			strings.Contains(strings.ToLower(ct.Company), needle) ||
			strings.Contains(strings.ToLower(ct.Email), needle) ||
			strings.Contains(ct.Phone, text) {
			return true
		}
		return digits != "" && strings.Contains(contact.Digits(ct.Phone), digits)
	}
}

func phoneLike(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && !strings.ContainsRune(" -()+./", r) {
			return false
		}
	}
	return true
}

// Owners lists the distinct sales people in contacts, sorted.
func Owners(contacts []*contact.Contact) []string {
	seen := map[string]bool{}
	var owners []string
	for _, ct := range contacts {
		if ct.SalesPerson == "" || seen[ct.SalesPerson] {
			continue
		}
		seen[ct.SalesPerson] = true
		owners = append(owners, ct.SalesPerson)
	}
	sort.Strings(owners)
	return owners
}
