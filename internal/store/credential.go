package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/user-api/internal/domain"
)

// CredentialStore defines the interface for credential data persistence.
// Credentials are only ever written as a side effect of a user write.
type CredentialStore interface {
	// Save persists a credential. If the credential's ID is zero a new row
	// is inserted and the store-assigned ID is set on the returned
	// credential; otherwise the existing row is overwritten in place.
	// Returns ErrDuplicate if the username is already taken.
	Save(ctx context.Context, credential *domain.Credential) (*domain.Credential, error)

	// GetByUserID retrieves the credential owned by the given user.
	// Returns a NotFoundError if the user has no credential.
	GetByUserID(ctx context.Context, userID int64) (*domain.Credential, error)

	// FindIDByUserID returns the ID of the credential owned by the given
	// user, or zero with no error when the user has no credential. Only the
	// ID column is read; the update path uses this to preserve credential
	// identity without loading the full row.
	FindIDByUserID(ctx context.Context, userID int64) (int64, error)

	// WithTx returns a new CredentialStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) CredentialStore
}
