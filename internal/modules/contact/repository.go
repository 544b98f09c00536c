package contact

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the record store gateway for contacts.
type Repository interface {
	// List returns contacts newest first. A non-empty ownerID restricts the
	// result to that owner.
	List(ctx context.Context, ownerID string) ([]*Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	// Create inserts c and fills in the store-assigned ID and timestamps.
	Create(ctx context.Context, c *Contact) error
	// Update rewrites the editable fields of c. ID, owner and creation time
	// are never changed.
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}
