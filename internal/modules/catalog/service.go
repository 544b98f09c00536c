package catalog

import (
	"strings"

	"github.com/georgemunganga/exhibition-crm/internal/modules/contact"
	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/georgemunganga/exhibition-crm/internal/modules/search"
)

// Service defines catalog business logic.
type Service interface {
	Get() Catalog
}

type service struct{ catalog Catalog }

func NewService() Service { return &service{catalog: build()} }

func (s *service) Get() Catalog { return s.catalog }

var labels = map[string]string{
	string(contact.BusinessCafeRestaurant): "Cafe/Restaurant",
	string(contact.BusinessAirbnbs):        "Airbnbs",
	string(contact.KindSideTable):          "Side Table",
	string(photo.TagBusinessCard):          "Business Card",
}

func label(v string) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

func build() Catalog {
	c := Catalog{DefaultPriority: 5}
	for _, b := range contact.BusinessTypes {
		c.BusinessTypes = append(c.BusinessTypes, Option{Value: string(b), Label: label(string(b))})
	}
	for _, k := range contact.ProductKinds {
		c.ProductKinds = append(c.ProductKinds, Option{Value: string(k), Label: label(string(k))})
	}
	for _, b := range search.Bands {
		c.PriorityBands = append(c.PriorityBands, PriorityBand{
			Value: b.Name,
			Label: label(b.Name) + " (" + b.Label() + ")",
			Min:   b.Min,
			Max:   b.Max,
		})
	}
	for _, t := range []photo.Tag{photo.TagProduct, photo.TagBusinessCard} {
		c.PhotoTags = append(c.PhotoTags, Option{Value: string(t), Label: label(string(t))})
	}
	return c
}
