package catalog

// Option is a selectable value and its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PriorityBand is a named priority range offered as a filter.
type PriorityBand struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// Catalog lists the closed value sets the capture form and filters offer.
type Catalog struct {
	BusinessTypes   []Option       `json:"business_types"`
	ProductKinds    []Option       `json:"product_kinds"`
	PriorityBands   []PriorityBand `json:"priority_bands"`
	PhotoTags       []Option       `json:"photo_tags"`
	DefaultPriority int            `json:"default_priority"`
}
