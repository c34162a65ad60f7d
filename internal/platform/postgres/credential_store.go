package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/store"
)

// PostgresCredentialStore implements the store.CredentialStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCredentialStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCredentialStore creates a new PostgreSQL implementation of the
// CredentialStore interface.
func NewPostgresCredentialStore(db store.DBTX, logger *slog.Logger) *PostgresCredentialStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCredentialStore{
		db:     db,
		logger: logger.With(slog.String("component", "credential_store")),
	}
}

// Ensure PostgresCredentialStore implements store.CredentialStore interface
var _ store.CredentialStore = (*PostgresCredentialStore)(nil)

// WithTx implements store.CredentialStore.WithTx
func (s *PostgresCredentialStore) WithTx(tx *sql.Tx) store.CredentialStore {
	return &PostgresCredentialStore{
		db:     tx,
		logger: s.logger,
	}
}

// Save implements store.CredentialStore.Save. A zero CredentialID inserts a
// new row; a non-zero one overwrites the existing row, which is how the
// update path keeps a user's credential identity stable.
func (s *PostgresCredentialStore) Save(
	ctx context.Context,
	credential *domain.Credential,
) (*domain.Credential, error) {
	if credential.CredentialID == 0 {
		query := `
			INSERT INTO credentials (user_id, username, password, role,
				is_enabled, is_account_non_expired, is_account_non_locked, is_credentials_non_expired)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING credential_id
		`

		err := s.db.QueryRowContext(ctx, query,
			credential.UserID,
			credential.Username,
			credential.Password,
			credential.Role,
			credential.Enabled,
			credential.AccountNonExpired,
			credential.AccountNonLocked,
			credential.CredentialsNonExpired,
		).Scan(&credential.CredentialID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert credential: %w", MapError(err))
		}

		return credential, nil
	}

	query := `
		UPDATE credentials
		SET user_id = $1, username = $2, password = $3, role = $4,
			is_enabled = $5, is_account_non_expired = $6, is_account_non_locked = $7,
			is_credentials_non_expired = $8
		WHERE credential_id = $9
	`

	result, err := s.db.ExecContext(ctx, query,
		credential.UserID,
		credential.Username,
		credential.Password,
		credential.Role,
		credential.Enabled,
		credential.AccountNonExpired,
		credential.AccountNonLocked,
		credential.CredentialsNonExpired,
		credential.CredentialID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update credential: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, store.NewCredentialNotFoundError(credential.UserID)); err != nil {
		return nil, err
	}

	return credential, nil
}

// GetByUserID implements store.CredentialStore.GetByUserID
func (s *PostgresCredentialStore) GetByUserID(
	ctx context.Context,
	userID int64,
) (*domain.Credential, error) {
	query := `
		SELECT credential_id, user_id, username, password, role,
			is_enabled, is_account_non_expired, is_account_non_locked, is_credentials_non_expired
		FROM credentials
		WHERE user_id = $1
	`

	credential := &domain.Credential{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&credential.CredentialID,
		&credential.UserID,
		&credential.Username,
		&credential.Password,
		&credential.Role,
		&credential.Enabled,
		&credential.AccountNonExpired,
		&credential.AccountNonLocked,
		&credential.CredentialsNonExpired,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.NewCredentialNotFoundError(userID)
		}
		return nil, fmt.Errorf("failed to get credential by user ID: %w", MapError(err))
	}

	return credential, nil
}

// FindIDByUserID implements store.CredentialStore.FindIDByUserID.
// A user without a credential yields (0, nil): absence is a normal state on
// the update path, not a failure.
func (s *PostgresCredentialStore) FindIDByUserID(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT credential_id FROM credentials WHERE user_id = $1`

	var id int64
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find credential ID by user ID: %w", MapError(err))
	}

	return id, nil
}
