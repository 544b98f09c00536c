package access

import (
	"context"
	"errors"
	"strings"
)

// Role is the access role attached to an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a role claim onto a Role. Anything unrecognised is a plain user.
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Identity is the authenticated caller as handed back by the identity provider.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (i *Identity) IsAdmin() bool { return i != nil && i.Role == RoleAdmin }

// ErrAccessDenied is returned when a caller may not see or change a resource.
var ErrAccessDenied = errors.New("access denied")

// Owned is anything that belongs to exactly one identity.
type Owned interface {
	OwnerKey() string
}

// Policy decides visibility and mutability. Admins see and change everything,
// users only what they own. It is pure and has no failure mode.
type Policy struct{}

func (Policy) CanView(id *Identity, r Owned) bool {
	if id == nil || r == nil {
		return false
	}
	return id.IsAdmin() || r.OwnerKey() == id.ID
}

func (p Policy) CanMutate(id *Identity, r Owned) bool {
	return p.CanView(id, r)
}

// OwnerScope is the owner filter a store query must apply for the caller;
// empty means unrestricted.
func (Policy) OwnerScope(id *Identity) string {
	if id.IsAdmin() {
		return ""
	}
	return id.ID
}

// VisibleSet returns the subset of all the caller may view, in input order.
func VisibleSet[T Owned](p Policy, id *Identity, all []T) []T {
	out := make([]T, 0, len(all))
	for _, r := range all {
		if p.CanView(id, r) {
			out = append(out, r)
		}
	}
	return out
}

type ctxKey struct{}

// WithIdentity stores the caller on the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller, or nil when the request is anonymous.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
