package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Prefer the typed NotFoundError, which carries the entity and key; it
	// unwraps to this sentinel.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint (e.g., a credential with an already-taken username). The
	// wrapped chain keeps the driver detail so the boundary can tell which
	// constraint was hit.
	ErrDuplicate = errors.New("data integrity violation")

	// ErrDeferredLoad is returned when an aggregate's association is accessed
	// through a transaction or connection that has already been released.
	// MapError in the postgres package produces it from sql.ErrTxDone and
	// sql.ErrConnDone.
	ErrDeferredLoad = errors.New("association accessed outside its load scope")

	// ErrInvalidEntity is returned when an entity fails a database-level
	// constraint other than uniqueness (check, not-null, foreign key).
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")
)

// NotFoundError is the typed "not found" failure. Its message carries the
// entity kind and the key that was looked up, and is what the boundary
// renders to API consumers. It unwraps to ErrNotFound for errors.Is checks.
type NotFoundError struct {
	Entity string // The entity kind (e.g., "User", "Credential")
	Field  string // The lookup field (e.g., "id", "username")
	Key    any    // The key that did not resolve
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s: %v not found", e.Entity, e.Field, e.Key)
}

// Unwrap returns ErrNotFound to support errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewUserNotFoundError creates a NotFoundError for a user id lookup.
func NewUserNotFoundError(id int64) *NotFoundError {
	return &NotFoundError{Entity: "User", Field: "id", Key: id}
}

// NewUserByUsernameNotFoundError creates a NotFoundError for a credential
// username lookup.
func NewUserByUsernameNotFoundError(username string) *NotFoundError {
	return &NotFoundError{Entity: "User", Field: "username", Key: username}
}

// NewCredentialNotFoundError creates a NotFoundError for a credential lookup
// by owning user id.
func NewCredentialNotFoundError(userID int64) *NotFoundError {
	return &NotFoundError{Entity: "Credential", Field: "user id", Key: userID}
}

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is a uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
