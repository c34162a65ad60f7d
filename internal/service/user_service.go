package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/platform/metrics"
	"github.com/phrazzld/user-api/internal/store"
)

// registrationsCounter is incremented exactly once per successful create.
const registrationsCounter = "user_registrations_total"

// UserService provides user aggregate operations. A user and its optional
// credential span two rows, and the store layer only offers single-row
// writes, so consistency is procedural: the user row is written first to
// obtain its id, the credential row is stamped with that id and written
// second, and both writes share one transaction.
type UserService interface {
	// GetAll returns all users in store order with exact duplicates
	// (by full field equality) collapsed.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int64) (*domain.User, error)

	// GetByUsername resolves a user through their credential's username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Create persists a new user together with its optional credential and
	// returns the fully assembled aggregate with store-assigned ids.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// Update updates the user identified by the id embedded in the payload.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)

	// UpdateByID updates the user identified by userID; the id embedded in
	// the payload is overridden. When the payload carries a credential, the
	// existing credential's id is reused so the write is an update in place,
	// never a second row. When it carries none, the stored credential is
	// left untouched and is not re-attached to the returned user; callers
	// that need it must re-fetch.
	UpdateByID(ctx context.Context, userID int64, user *domain.User) (*domain.User, error)

	// Delete removes a user by ID. Delegates straight to the store; any
	// credential cleanup is the schema's concern, not this method's.
	Delete(ctx context.Context, userID int64) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore       store.UserStore
	credentialStore store.CredentialStore
	txRunner        store.TxRunner
	metrics         metrics.Sink
	logger          *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	credentialStore store.CredentialStore,
	txRunner store.TxRunner,
	sink metrics.Sink,
	logger *slog.Logger,
) UserService {
	if sink == nil {
		sink = metrics.Noop{}
	}

	return &UserServiceImpl{
		userStore:       userStore,
		credentialStore: credentialStore,
		txRunner:        txRunner,
		metrics:         sink,
		logger:          logger.With("component", "user_service"),
	}
}

// GetAll returns all users with exact duplicates collapsed. Order follows
// the store's natural return order.
func (s *UserServiceImpl) GetAll(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userStore.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return collapseDuplicates(users), nil
}

// GetByID retrieves a user by their ID
func (s *UserServiceImpl) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("user not found", "user_id", userID)
		} else {
			s.logger.Error("failed to retrieve user", "error", err, "user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return user, nil
}

// GetByUsername resolves a user through their credential's username
func (s *UserServiceImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userStore.GetByCredentialUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("user not found by username", "username", username)
		} else {
			s.logger.Error("failed to retrieve user by username",
				"error", err,
				"username", username)
		}
		return nil, fmt.Errorf("failed to retrieve user by username: %w", err)
	}

	return user, nil
}

// Create persists the user and its optional credential inside one
// transaction: user first to obtain the assigned id, then the credential
// stamped with it. The registrations counter is incremented only after the
// transaction commits.
func (s *UserServiceImpl) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	// Detach the credential so the user row is written without it.
	credential := user.Credential
	user.Credential = nil
	user.UserID = 0

	var saved *domain.User
	err := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)

		var err error
		saved, err = txUsers.Save(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		if credential != nil {
			credential.CredentialID = 0
			credential.UserID = saved.UserID

			savedCredential, err := s.credentialStore.WithTx(tx).Save(ctx, credential)
			if err != nil {
				return fmt.Errorf("failed to save credential: %w", err)
			}
			saved.Credential = savedCredential
		}

		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("create rejected by uniqueness constraint", "error", err)
		} else {
			s.logger.Error("failed to create user", "error", err)
		}
		return nil, err
	}

	s.metrics.IncrementCounter(ctx, registrationsCounter)

	s.logger.Info("user created",
		"user_id", saved.UserID,
		"has_credential", saved.Credential != nil)

	return saved, nil
}

// Update updates the user identified by the id embedded in the payload.
func (s *UserServiceImpl) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	return s.UpdateByID(ctx, user.UserID, user)
}

// UpdateByID updates the user identified by userID. The existing
// credential's id is recovered up front and forced onto any incoming
// credential payload, which is what keeps repeated updates from minting
// duplicate credential rows.
func (s *UserServiceImpl) UpdateByID(
	ctx context.Context,
	userID int64,
	user *domain.User,
) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.userStore.ExistsByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to check user existence", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		s.logger.Debug("update target not found", "user_id", userID)
		return nil, store.NewUserNotFoundError(userID)
	}

	// Only the id is needed here; zero means the user has no credential yet.
	existingCredentialID, err := s.credentialStore.FindIDByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to look up existing credential",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to look up existing credential: %w", err)
	}

	// The path-supplied id wins over any id embedded in the payload.
	user.UserID = userID

	credential := user.Credential
	user.Credential = nil

	var saved *domain.User
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)

		var err error
		saved, err = txUsers.Save(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		if credential != nil {
			if existingCredentialID != 0 {
				credential.CredentialID = existingCredentialID
			}
			credential.UserID = saved.UserID

			savedCredential, err := s.credentialStore.WithTx(tx).Save(ctx, credential)
			if err != nil {
				return fmt.Errorf("failed to save credential: %w", err)
			}
			saved.Credential = savedCredential
		}

		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("update rejected by uniqueness constraint",
				"error", err,
				"user_id", userID)
		} else {
			s.logger.Error("failed to update user", "error", err, "user_id", userID)
		}
		return nil, err
	}

	s.logger.Info("user updated",
		"user_id", saved.UserID,
		"credential_written", credential != nil)

	return saved, nil
}

// Delete removes a user by their ID
func (s *UserServiceImpl) Delete(ctx context.Context, userID int64) error {
	if err := s.userStore.Delete(ctx, userID); err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("attempted to delete non-existent user", "user_id", userID)
		} else {
			s.logger.Error("failed to delete user", "error", err, "user_id", userID)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// collapseDuplicates removes users that are fully field-equal to an earlier
// entry, preserving first-seen order.
func collapseDuplicates(users []*domain.User) []*domain.User {
	result := make([]*domain.User, 0, len(users))
	for _, user := range users {
		duplicate := false
		for _, kept := range result {
			if kept.Equal(user) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			result = append(result, user)
		}
	}
	return result
}
