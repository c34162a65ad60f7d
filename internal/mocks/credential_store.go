package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/store"
)

// MockCredentialStore implements store.CredentialStore for testing. The
// default behavior mirrors the real store: sequential ids on insert,
// overwrite in place on a non-zero id, uniqueness on username.
type MockCredentialStore struct {
	// Function fields for customizable behavior
	SaveFn           func(ctx context.Context, credential *domain.Credential) (*domain.Credential, error)
	GetByUserIDFn    func(ctx context.Context, userID int64) (*domain.Credential, error)
	FindIDByUserIDFn func(ctx context.Context, userID int64) (int64, error)

	// Data for default implementation
	Credentials map[int64]*domain.Credential // keyed by credential id
	NextID      int64
	SaveCalls   int
	SaveError   error
}

// NewMockCredentialStore creates a new mock store with initialized defaults
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		Credentials: make(map[int64]*domain.Credential),
		NextID:      1,
	}
}

// Ensure MockCredentialStore implements store.CredentialStore interface
var _ store.CredentialStore = (*MockCredentialStore)(nil)

// WithTx implements the CredentialStore interface; the mock ignores transactions.
func (m *MockCredentialStore) WithTx(tx *sql.Tx) store.CredentialStore {
	return m
}

// Save implements the CredentialStore interface
func (m *MockCredentialStore) Save(
	ctx context.Context,
	credential *domain.Credential,
) (*domain.Credential, error) {
	m.SaveCalls++

	if m.SaveFn != nil {
		return m.SaveFn(ctx, credential)
	}

	if m.SaveError != nil {
		return nil, m.SaveError
	}

	for id, existing := range m.Credentials {
		if existing.Username == credential.Username && id != credential.CredentialID {
			return nil, &duplicateError{detail: "unique violation (credentials_username_key)"}
		}
	}

	if credential.CredentialID == 0 {
		credential.CredentialID = m.NextID
		m.NextID++
	} else if _, exists := m.Credentials[credential.CredentialID]; !exists {
		return nil, store.NewCredentialNotFoundError(credential.UserID)
	}

	stored := *credential
	m.Credentials[credential.CredentialID] = &stored
	return credential, nil
}

// GetByUserID implements the CredentialStore interface
func (m *MockCredentialStore) GetByUserID(
	ctx context.Context,
	userID int64,
) (*domain.Credential, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}

	for _, credential := range m.Credentials {
		if credential.UserID == userID {
			copied := *credential
			return &copied, nil
		}
	}

	return nil, store.NewCredentialNotFoundError(userID)
}

// FindIDByUserID implements the CredentialStore interface
func (m *MockCredentialStore) FindIDByUserID(ctx context.Context, userID int64) (int64, error) {
	if m.FindIDByUserIDFn != nil {
		return m.FindIDByUserIDFn(ctx, userID)
	}

	for _, credential := range m.Credentials {
		if credential.UserID == userID {
			return credential.CredentialID, nil
		}
	}

	return 0, nil
}

// duplicateError mimics the mapped driver error for uniqueness violations.
type duplicateError struct {
	detail string
}

func (e *duplicateError) Error() string {
	return store.ErrDuplicate.Error() + ": " + e.detail
}

func (e *duplicateError) Unwrap() error {
	return store.ErrDuplicate
}
