package contact

import (
	"strings"

	"github.com/google/uuid"
)

// Match is a duplicate found by FindDuplicate and the field that collided.
type Match struct {
	Contact *Contact
	Field   string // "email" or "phone"
}

// FindDuplicate scans set in order and returns the first contact, other than
// excludeID, sharing the candidate's email or phone. Blank fields never match.
// Phones compare on their digits so formatting differences still collide.
func FindDuplicate(email, phone string, excludeID uuid.UUID, set []*Contact) *Match {
	email = strings.TrimSpace(email)
	phone = Digits(phone)
	if email == "" && phone == "" {
		return nil
	}

	for _, c := range set {
		if c == nil || (excludeID != uuid.Nil && c.ID == excludeID) {
			continue
		}
		if email != "" && strings.TrimSpace(c.Email) == email {
			return &Match{Contact: c, Field: "email"}
		}
		if phone != "" && Digits(c.Phone) == phone {
			return &Match{Contact: c, Field: "phone"}
		}
	}
	return nil
}
