// Package mocks provides test doubles for the store and platform interfaces.
package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Its default
// behavior is an in-memory store assigning sequential ids; any method can
// be overridden through the corresponding function field.
type MockUserStore struct {
	// Function fields for customizable behavior
	SaveFn                    func(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByIDFn                 func(ctx context.Context, id int64) (*domain.User, error)
	ExistsByIDFn              func(ctx context.Context, id int64) (bool, error)
	GetAllFn                  func(ctx context.Context) ([]*domain.User, error)
	GetByCredentialUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	DeleteFn                  func(ctx context.Context, id int64) error

	// Data for default implementation
	Users      map[int64]*domain.User
	NextID     int64
	SaveCalls  int
	SaveError  error
	Credential *MockCredentialStore // linked for username lookups, may be nil
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users:  make(map[int64]*domain.User),
		NextID: 1,
	}
}

// Ensure MockUserStore implements store.UserStore interface
var _ store.UserStore = (*MockUserStore)(nil)

// WithTx implements the UserStore interface; the mock ignores transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// Save implements the UserStore interface
func (m *MockUserStore) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.SaveCalls++

	if m.SaveFn != nil {
		return m.SaveFn(ctx, user)
	}

	if m.SaveError != nil {
		return nil, m.SaveError
	}

	if user.UserID == 0 {
		user.UserID = m.NextID
		m.NextID++
	} else if _, exists := m.Users[user.UserID]; !exists {
		return nil, store.NewUserNotFoundError(user.UserID)
	}

	stored := *user
	m.Users[user.UserID] = &stored
	return user, nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	user, exists := m.Users[id]
	if !exists {
		return nil, store.NewUserNotFoundError(id)
	}

	copied := *user
	copied.Credential = nil
	return &copied, nil
}

// ExistsByID implements the UserStore interface
func (m *MockUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if m.ExistsByIDFn != nil {
		return m.ExistsByIDFn(ctx, id)
	}

	_, exists := m.Users[id]
	return exists, nil
}

// GetAll implements the UserStore interface
func (m *MockUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx)
	}

	users := make([]*domain.User, 0, len(m.Users))
	for id := int64(1); id < m.NextID; id++ {
		if user, exists := m.Users[id]; exists {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, nil
}

// GetByCredentialUsername implements the UserStore interface
func (m *MockUserStore) GetByCredentialUsername(
	ctx context.Context,
	username string,
) (*domain.User, error) {
	if m.GetByCredentialUsernameFn != nil {
		return m.GetByCredentialUsernameFn(ctx, username)
	}

	if m.Credential != nil {
		for _, credential := range m.Credential.Credentials {
			if credential.Username == username {
				if user, exists := m.Users[credential.UserID]; exists {
					copied := *user
					credCopy := *credential
					copied.Credential = &credCopy
					return &copied, nil
				}
			}
		}
	}

	return nil, store.NewUserByUsernameNotFoundError(username)
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Users[id]; !exists {
		return store.NewUserNotFoundError(id)
	}

	delete(m.Users, id)
	return nil
}
