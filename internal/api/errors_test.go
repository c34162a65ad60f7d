package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/user-api/internal/api"
	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/store"
)

func TestClassifyValidationFailure(t *testing.T) {
	t.Run("domain validation error uses the field's default message", func(t *testing.T) {
		err := domain.NewValidationError("firstName", "must not be blank", domain.ErrValidation)

		resp := api.Classify(err)

		assert.Equal(t, api.StatusBadRequest, resp.Status)
		assert.Equal(t, "*must not be blank!**", resp.Msg)
	})

	t.Run("wrapped validation error still classifies", func(t *testing.T) {
		err := fmt.Errorf("failed to create user: %w",
			domain.NewValidationError("email", "must not be blank", domain.ErrEmptyEmail))

		resp := api.Classify(err)

		assert.Equal(t, api.StatusBadRequest, resp.Status)
		assert.Equal(t, "*must not be blank!**", resp.Msg)
	})

	t.Run("validator field errors map to default messages", func(t *testing.T) {
		type payload struct {
			FirstName string `validate:"required"`
		}

		err := validator.New().Struct(payload{})
		require.Error(t, err)

		resp := api.Classify(err)

		assert.Equal(t, api.StatusBadRequest, resp.Status)
		assert.Equal(t, "*must not be blank!**", resp.Msg)
	})
}

func TestClassifyNotFound(t *testing.T) {
	t.Run("user id lookup", func(t *testing.T) {
		resp := api.Classify(store.NewUserNotFoundError(13))

		assert.Equal(t, api.StatusNotFound, resp.Status)
		assert.Equal(t, "#### User with id: 13 not found! ####", resp.Msg)
	})

	t.Run("username lookup", func(t *testing.T) {
		resp := api.Classify(store.NewUserByUsernameNotFoundError("ghost"))

		assert.Equal(t, api.StatusNotFound, resp.Status)
		assert.Equal(t, "#### User with username: ghost not found! ####", resp.Msg)
	})

	t.Run("wrapped not-found keeps the typed message", func(t *testing.T) {
		err := fmt.Errorf("failed to retrieve user: %w", store.NewUserNotFoundError(4))

		resp := api.Classify(err)

		assert.Equal(t, api.StatusNotFound, resp.Status)
		assert.Equal(t, "#### User with id: 4 not found! ####", resp.Msg)
	})
}

func TestClassifyIntegrityViolation(t *testing.T) {
	violation := func(detail string) error {
		return fmt.Errorf("%w: unique violation (%s): duplicate key", store.ErrDuplicate, detail)
	}

	t.Run("username constraint", func(t *testing.T) {
		resp := api.Classify(violation("credentials_username_key"))

		assert.Equal(t, api.StatusConflict, resp.Status)
		assert.Equal(t, "*Username already exists!*", resp.Msg)
	})

	t.Run("email constraint", func(t *testing.T) {
		resp := api.Classify(violation("users_email_key"))

		assert.Equal(t, api.StatusConflict, resp.Status)
		assert.Equal(t, "*Email already exists!*", resp.Msg)
	})

	t.Run("unrecognized constraint", func(t *testing.T) {
		resp := api.Classify(violation("users_phone_key"))

		assert.Equal(t, api.StatusConflict, resp.Status)
		assert.Equal(t, "*Data integrity violation!*", resp.Msg)
	})
}

func TestClassifyInternalFaults(t *testing.T) {
	t.Run("deferred load fault", func(t *testing.T) {
		err := fmt.Errorf("%w: sql: transaction has already been committed or rolled back",
			store.ErrDeferredLoad)

		resp := api.Classify(err)

		assert.Equal(t, api.StatusInternalError, resp.Status)
		assert.Equal(t, "*Internal server error - lazy loading issue*", resp.Msg)
	})

	t.Run("unclassified fault gets the generic message", func(t *testing.T) {
		resp := api.Classify(errors.New("connection reset by peer"))

		assert.Equal(t, api.StatusInternalError, resp.Status)
		assert.Equal(t, "*Internal server error*", resp.Msg)
	})

	t.Run("detail never leaks into the message", func(t *testing.T) {
		resp := api.Classify(errors.New("password=hunter2 dsn=postgres://user:pw@host"))

		assert.NotContains(t, resp.Msg, "hunter2")
		assert.Equal(t, "*Internal server error*", resp.Msg)
	})
}

func TestClassifyTimestamp(t *testing.T) {
	before := time.Now()
	resp := api.Classify(errors.New("boom"))
	after := time.Now()

	assert.False(t, resp.Timestamp.Before(before))
	assert.False(t, resp.Timestamp.After(after))
}

func TestStatusHTTPCode(t *testing.T) {
	tests := []struct {
		status api.Status
		code   int
	}{
		{api.StatusBadRequest, http.StatusBadRequest},
		{api.StatusNotFound, http.StatusNotFound},
		{api.StatusConflict, http.StatusConflict},
		{api.StatusInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.status.HTTPCode(), string(tt.status))
	}
}
