package contact

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("contact not found")
	ErrDraftNotFound        = errors.New("draft not found or expired")
	ErrProductNotFound      = errors.New("product not found on draft")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrSubmitInProgress     = errors.New("a submit for this draft is already in progress")
	ErrDraftBusy            = errors.New("draft is being changed by another request, try again")
)

// ValidationError blocks a commit and names the violated rule.
type ValidationError struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// DuplicateWarning is returned by Submit when another visible contact already
// uses the same email or phone. It is overridable.
type DuplicateWarning struct {
	Duplicate *Contact
	Field     string
}

func (w *DuplicateWarning) Error() string {
	return fmt.Sprintf("a contact with this %s already exists: %s", w.Field, w.Duplicate.Name)
}

// PersistenceError wraps a record store failure. The draft that triggered it
// is left untouched.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s contact: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
