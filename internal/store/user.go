package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/user-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
//
// Save never touches the credential row: aggregate consistency between the
// user and its credential is the service layer's responsibility, written as
// two single-row operations inside one transaction.
type UserStore interface {
	// Save persists a user. If the user's ID is zero a new row is inserted
	// and the store-assigned ID is set on the returned user; otherwise the
	// existing row is overwritten in place.
	// Returns ErrDuplicate if a uniqueness constraint is violated.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByID retrieves a user by their unique ID, without the credential.
	// Returns a NotFoundError if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// ExistsByID reports whether a user with the given ID exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// GetAll returns all users in the store's natural order, each with its
	// credential attached when one exists.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// GetByCredentialUsername resolves a user through their credential's
	// username, returning the user with the credential attached.
	// Returns a NotFoundError if no credential carries that username.
	GetByCredentialUsername(ctx context.Context, username string) (*domain.User, error)

	// Delete removes a user from the store by their ID.
	// Returns a NotFoundError if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service via RunInTransaction).
	WithTx(tx *sql.Tx) UserStore
}
