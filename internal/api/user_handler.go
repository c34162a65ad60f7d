package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/user-api/internal/api/shared"
	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/service"
)

// UserHandler handles user-related API requests.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger.With("component", "user_handler"),
	}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleServiceError(w, r, domain.NewValidationError("body", "must be valid JSON", err))
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	user, err := h.userService.Create(r.Context(), req.toDomain())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newUserResponse(user))
}

// GetAll handles GET /api/users.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAll(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	resp := UserListResponse{Collection: make([]UserResponse, 0, len(users))}
	for _, user := range users {
		resp.Collection = append(resp.Collection, newUserResponse(user))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetByID handles GET /api/users/{userId}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}

// GetByUsername handles GET /api/users/username/{username}.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		HandleServiceError(w, r,
			domain.NewValidationError("username", "must not be blank", domain.ErrValidation))
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}

// Update handles PUT /api/users. The target id comes from the payload.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleServiceError(w, r, domain.NewValidationError("body", "must be valid JSON", err))
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	user, err := h.userService.Update(r.Context(), req.toDomain())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}

// UpdateByID handles PUT /api/users/{userId}. The path id wins over any id
// embedded in the payload.
func (h *UserHandler) UpdateByID(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	var req UserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleServiceError(w, r, domain.NewValidationError("body", "must be valid JSON", err))
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	user, err := h.userService.UpdateByID(r.Context(), userID, req.toDomain())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(user))
}

// Delete handles DELETE /api/users/{userId}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// pathUserID extracts and parses the {userId} path parameter.
func pathUserID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userId")
	if raw == "" {
		return 0, domain.NewValidationError("userId", "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("userId", "must be a valid number", domain.ErrInvalidID)
	}

	return id, nil
}
