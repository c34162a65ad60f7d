package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/user-api/internal/api"
	"github.com/phrazzld/user-api/internal/mocks"
	"github.com/phrazzld/user-api/internal/service"
)

// newTestRouter wires a full handler stack over in-memory stores.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userStore := mocks.NewMockUserStore()
	credentialStore := mocks.NewMockCredentialStore()
	userStore.Credential = credentialStore

	svc := service.NewUserService(
		userStore,
		credentialStore,
		&mocks.MockTxRunner{},
		mocks.NewMockMetricsSink(),
		logger,
	)

	handler := api.NewUserHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", handler.GetAll)
		r.Post("/", handler.Create)
		r.Put("/", handler.Update)
		r.Get("/username/{username}", handler.GetByUsername)
		r.Get("/{userId}", handler.GetByID)
		r.Put("/{userId}", handler.UpdateByID)
		r.Delete("/{userId}", handler.Delete)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) api.UserResponse {
	t.Helper()
	var resp api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func annPayload(username string) map[string]any {
	return map[string]any{
		"first_name": "Ann",
		"email":      "ann@example.com",
		"credential": map[string]any{
			"username": username,
			"password": "secret-material",
		},
	}
}

func TestUserHandler_CreateThenUpdate(t *testing.T) {
	router := newTestRouter(t)

	// Create assigns ids to both rows and links them.
	rec := doJSON(t, router, http.MethodPost, "/api/users", annPayload("ann1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeUser(t, rec)
	assert.Equal(t, int64(1), created.UserID)
	require.NotNil(t, created.Credential)
	assert.Equal(t, int64(1), created.Credential.CredentialID)
	assert.Equal(t, int64(1), created.Credential.UserID)

	// Update by path id renames the credential but keeps its identity.
	update := annPayload("ann1-new")
	update["first_name"] = "Anne"
	rec = doJSON(t, router, http.MethodPut, "/api/users/1", update)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeUser(t, rec)
	assert.Equal(t, int64(1), updated.UserID)
	assert.Equal(t, "Anne", updated.FirstName)
	require.NotNil(t, updated.Credential)
	assert.Equal(t, int64(1), updated.Credential.CredentialID)
	assert.Equal(t, "ann1-new", updated.Credential.Username)
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects missing required fields with the default message", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]any{
			"email": "ann@example.com",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, api.StatusBadRequest, resp.Status)
		assert.Equal(t, "*must not be blank!**", resp.Msg)
		assert.False(t, resp.Timestamp.IsZero())
	})

	t.Run("duplicate username yields a conflict", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/users", annPayload("ann1"))
		require.Equal(t, http.StatusCreated, rec.Code)

		second := annPayload("ann1")
		second["email"] = "other@example.com"
		rec = doJSON(t, router, http.MethodPost, "/api/users", second)

		require.Equal(t, http.StatusConflict, rec.Code)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "*Username already exists!*", resp.Msg)
	})
}

func TestUserHandler_Get(t *testing.T) {
	t.Run("missing user renders the not-found contract", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodGet, "/api/users/13", nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, api.StatusNotFound, resp.Status)
		assert.Equal(t, "#### User with id: 13 not found! ####", resp.Msg)
	})

	t.Run("non-numeric id is a bad request", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodGet, "/api/users/abc", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lookup by username", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/users", annPayload("ann1"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/users/username/ann1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		fetched := decodeUser(t, rec)
		assert.Equal(t, int64(1), fetched.UserID)
		require.NotNil(t, fetched.Credential)
		assert.Equal(t, "ann1", fetched.Credential.Username)
	})

	t.Run("unknown username renders the not-found contract", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodGet, "/api/users/username/ghost", nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Msg, "ghost")
	})

	t.Run("list wraps users in a collection", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/users", annPayload("ann1"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/users", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.UserListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Collection, 1)
		assert.Equal(t, int64(1), resp.Collection[0].UserID)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	t.Run("deletes an existing user", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/users", annPayload("ann1"))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodDelete, "/api/users/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/users/1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deleting a missing user is not found", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodDelete, "/api/users/99", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserHandler_SelfIDUpdate(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", annPayload("ann1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	payload := annPayload("ann1-renamed")
	payload["user_id"] = 1
	rec = doJSON(t, router, http.MethodPut, "/api/users", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeUser(t, rec)
	assert.Equal(t, int64(1), updated.UserID)
	assert.Equal(t, int64(1), updated.Credential.CredentialID)
	assert.Equal(t, "ann1-renamed", updated.Credential.Username)
}
