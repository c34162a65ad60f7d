package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Save implements store.UserStore.Save. A zero UserID inserts a new row and
// sets the database-assigned id on the returned user; a non-zero UserID
// overwrites the existing row.
func (s *PostgresUserStore) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()

	if user.UserID == 0 {
		query := `
			INSERT INTO users (first_name, last_name, image_url, email, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING user_id
		`

		err := s.db.QueryRowContext(ctx, query,
			user.FirstName,
			user.LastName,
			user.ImageURL,
			user.Email,
			user.Phone,
			now,
			now,
		).Scan(&user.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert user: %w", MapError(err))
		}

		user.CreatedAt = now
		user.UpdatedAt = now
		return user, nil
	}

	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, image_url = $3, email = $4, phone = $5, updated_at = $6
		WHERE user_id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.ImageURL,
		user.Email,
		user.Phone,
		now,
		user.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, store.NewUserNotFoundError(user.UserID)); err != nil {
		return nil, err
	}

	user.UpdatedAt = now
	return user, nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT user_id, first_name, last_name, image_url, email, phone, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	user := &domain.User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.UserID,
		&user.FirstName,
		&user.LastName,
		&user.ImageURL,
		&user.Email,
		&user.Phone,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.NewUserNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", MapError(err))
	}

	return user, nil
}

// ExistsByID implements store.UserStore.ExistsByID
func (s *PostgresUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", MapError(err))
	}

	return exists, nil
}

// GetAll implements store.UserStore.GetAll. Users are returned in insertion
// order with their credential attached when one exists.
func (s *PostgresUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT u.user_id, u.first_name, u.last_name, u.image_url, u.email, u.phone,
		       u.created_at, u.updated_at,
		       c.credential_id, c.username, c.password, c.role,
		       c.is_enabled, c.is_account_non_expired, c.is_account_non_locked,
		       c.is_credentials_non_expired
		FROM users u
		LEFT JOIN credentials c ON c.user_id = u.user_id
		ORDER BY u.user_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserWithCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", MapError(err))
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", MapError(err))
	}

	return users, nil
}

// GetByCredentialUsername implements store.UserStore.GetByCredentialUsername
func (s *PostgresUserStore) GetByCredentialUsername(
	ctx context.Context,
	username string,
) (*domain.User, error) {
	query := `
		SELECT u.user_id, u.first_name, u.last_name, u.image_url, u.email, u.phone,
		       u.created_at, u.updated_at,
		       c.credential_id, c.username, c.password, c.role,
		       c.is_enabled, c.is_account_non_expired, c.is_account_non_locked,
		       c.is_credentials_non_expired
		FROM users u
		JOIN credentials c ON c.user_id = u.user_id
		WHERE c.username = $1
	`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get user by username: %w", MapError(err))
		}
		return nil, store.NewUserByUsernameNotFoundError(username)
	}

	user, err := scanUserWithCredential(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row: %w", MapError(err))
	}

	return user, nil
}

// Delete implements store.UserStore.Delete. The credentials row, if any, is
// removed by the ON DELETE CASCADE on its foreign key; the store performs a
// single-row delete only.
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE user_id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", MapError(err))
	}

	return CheckRowsAffected(result, store.NewUserNotFoundError(id))
}

// scanUserWithCredential scans one row of the user LEFT JOIN credentials
// shape. Credential columns are nullable; a user without a credential comes
// back with Credential == nil.
func scanUserWithCredential(rows *sql.Rows) (*domain.User, error) {
	user := &domain.User{}
	var (
		credentialID          sql.NullInt64
		username              sql.NullString
		password              sql.NullString
		role                  sql.NullString
		enabled               sql.NullBool
		accountNonExpired     sql.NullBool
		accountNonLocked      sql.NullBool
		credentialsNonExpired sql.NullBool
	)

	err := rows.Scan(
		&user.UserID,
		&user.FirstName,
		&user.LastName,
		&user.ImageURL,
		&user.Email,
		&user.Phone,
		&user.CreatedAt,
		&user.UpdatedAt,
		&credentialID,
		&username,
		&password,
		&role,
		&enabled,
		&accountNonExpired,
		&accountNonLocked,
		&credentialsNonExpired,
	)
	if err != nil {
		return nil, err
	}

	if credentialID.Valid {
		user.Credential = &domain.Credential{
			CredentialID:          credentialID.Int64,
			UserID:                user.UserID,
			Username:              username.String,
			Password:              password.String,
			Role:                  role.String,
			Enabled:               enabled.Bool,
			AccountNonExpired:     accountNonExpired.Bool,
			AccountNonLocked:      accountNonLocked.Bool,
			CredentialsNonExpired: credentialsNonExpired.Bool,
		}
	}

	return user, nil
}
