package report

import "github.com/georgemunganga/exhibition-crm/internal/modules/contact"

// HighPriority is the lowest priority counted as high.
const HighPriority = 8

// Stats are dashboard counts over a contact set.
type Stats struct {
	Total          int            `json:"total"`
	HighPriority   int            `json:"high_priority"`
	ByOwner        map[string]int `json:"by_owner"`
	ByBusinessType map[string]int `json:"by_business_type"`
}

// Compute counts contacts. Blank group keys are counted under "".
func Compute(contacts []*contact.Contact) Stats {
	s := Stats{
		Total:          len(contacts),
		ByOwner:        map[string]int{},
		ByBusinessType: map[string]int{},
	}
	for _, c := range contacts {
		if c.Priority >= HighPriority {
			s.HighPriority++
		}
		s.ByOwner[c.SalesPerson]++
		s.ByBusinessType[string(c.BusinessType)]++
	}
	return s
}
