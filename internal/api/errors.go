package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/user-api/internal/api/shared"
	"github.com/phrazzld/user-api/internal/domain"
	"github.com/phrazzld/user-api/internal/platform/logger"
	"github.com/phrazzld/user-api/internal/store"
)

// Status is the client-facing status category of a classified fault. The
// constants serialize in the Spring style the API's consumers already parse.
type Status string

const (
	StatusBadRequest    Status = "BAD_REQUEST"
	StatusNotFound      Status = "NOT_FOUND"
	StatusConflict      Status = "CONFLICT"
	StatusInternalError Status = "INTERNAL_SERVER_ERROR"
)

// HTTPCode returns the HTTP status code for the status category.
func (s Status) HTTPCode() int {
	switch s {
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the stable error contract returned to API consumers.
// The message wrapping punctuation (`*...*`, `#### ... ####`) is part of the
// contract, not incidental; clients match on it.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"httpStatus"`
	Msg       string    `json:"msg"`
}

// Classify translates an internal failure into the client-facing
// ErrorResponse. It is the single point converting fault kinds to response
// text; no other component formats user-facing error messages.
//
// Dispatch is exhaustive over the fault taxonomy: validation failure,
// not-found, integrity violation, deferred-load fault, anything else.
func Classify(err error) ErrorResponse {
	now := time.Now()

	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	var notFoundErr *store.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusBadRequest,
			Msg:       "*" + validationErr.Message + "!**",
		}

	case errors.As(err, &fieldErrs):
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusBadRequest,
			Msg:       "*" + defaultFieldMessage(fieldErrs[0]) + "!**",
		}

	case errors.As(err, &notFoundErr):
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusNotFound,
			Msg:       "#### " + notFoundErr.Error() + "! ####",
		}

	case errors.Is(err, store.ErrNotFound):
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusNotFound,
			Msg:       "#### " + err.Error() + "! ####",
		}

	case errors.Is(err, store.ErrDuplicate):
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusConflict,
			Msg:       "*" + duplicateMessage(err) + "!*",
		}

	case errors.Is(err, store.ErrDeferredLoad):
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusInternalError,
			Msg:       "*Internal server error - lazy loading issue*",
		}

	default:
		return ErrorResponse{
			Timestamp: now,
			Status:    StatusInternalError,
			Msg:       "*Internal server error*",
		}
	}
}

// duplicateMessage inspects the violation's raw message to name the
// constraint that was hit. The database constraint names carry the column
// ("credentials_username_key", "users_email_key"), so a substring check is
// enough.
func duplicateMessage(err error) string {
	raw := err.Error()
	switch {
	case strings.Contains(raw, "username"):
		return "Username already exists"
	case strings.Contains(raw, "email"):
		return "Email already exists"
	default:
		return "Data integrity violation"
	}
}

// defaultFieldMessage renders a validator field error with the default
// message its tag implies, matching the messages API consumers have always
// seen for these failures.
func defaultFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "min":
		return "size must be at least " + fe.Param()
	case "max":
		return "size must be at most " + fe.Param()
	default:
		return "must be valid"
	}
}

// HandleServiceError classifies err and writes the resulting ErrorResponse.
// Internal faults are logged at error severity with the full detail before
// the deliberately generic message goes to the caller.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	resp := Classify(err)

	log := logger.FromContext(r.Context())
	if resp.Status == StatusInternalError {
		log.Error("internal fault",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
			slog.String("method", r.Method),
			slog.String("trace_id", shared.GetTraceID(r.Context())))
	} else {
		log.Debug("request failed",
			slog.String("error", err.Error()),
			slog.String("status", string(resp.Status)),
			slog.String("path", r.URL.Path))
	}

	shared.RespondWithJSON(w, r, resp.Status.HTTPCode(), resp)
}
