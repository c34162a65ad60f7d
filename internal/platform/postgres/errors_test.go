package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/user-api/internal/platform/postgres"
	"github.com/phrazzld/user-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		err := postgres.MapError(sql.ErrNoRows)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("finished transaction becomes a deferred-load fault", func(t *testing.T) {
		err := postgres.MapError(fmt.Errorf("loading credential: %w", sql.ErrTxDone))
		assert.ErrorIs(t, err, store.ErrDeferredLoad)
	})

	t.Run("released connection becomes a deferred-load fault", func(t *testing.T) {
		err := postgres.MapError(sql.ErrConnDone)
		assert.ErrorIs(t, err, store.ErrDeferredLoad)
	})

	t.Run("unique violation keeps the constraint name", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "credentials_username_key",
			Detail:         "Key (username)=(ann1) already exists.",
		}

		err := postgres.MapError(pgErr)

		require.ErrorIs(t, err, store.ErrDuplicate)
		assert.Contains(t, err.Error(), "credentials_username_key")
		assert.Contains(t, err.Error(), "Key (username)=(ann1) already exists.")
	})

	t.Run("foreign key violation becomes an invalid entity", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "credentials_user_id_fkey"}

		err := postgres.MapError(pgErr)

		require.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Contains(t, err.Error(), "credentials_user_id_fkey")
	})

	t.Run("check violation becomes an invalid entity", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23514", ConstraintName: "users_email_check"}
		assert.ErrorIs(t, postgres.MapError(pgErr), store.ErrInvalidEntity)
	})

	t.Run("not null violation names the column", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23502", ColumnName: "first_name"}

		err := postgres.MapError(pgErr)

		require.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Contains(t, err.Error(), "first_name")
	})

	t.Run("unrecognized errors pass through untouched", func(t *testing.T) {
		original := errors.New("connection refused")
		assert.Equal(t, original, postgres.MapError(original))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	assert.True(t, postgres.IsUniqueViolation(pgErr))
	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("wrapped: %w", pgErr)))
	assert.False(t, postgres.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	notFound := store.NewUserNotFoundError(5)

	t.Run("affected rows succeed", func(t *testing.T) {
		assert.NoError(t, postgres.CheckRowsAffected(fakeResult{rows: 1}, notFound))
	})

	t.Run("zero rows return the supplied error", func(t *testing.T) {
		err := postgres.CheckRowsAffected(fakeResult{rows: 0}, notFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("driver failure is wrapped", func(t *testing.T) {
		err := postgres.CheckRowsAffected(fakeResult{err: errors.New("driver gone")}, notFound)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "driver gone")
	})

	t.Run("nil result is an error", func(t *testing.T) {
		assert.Error(t, postgres.CheckRowsAffected(nil, notFound))
	})
}
