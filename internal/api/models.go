package api

import (
	"time"

	"github.com/phrazzld/user-api/internal/domain"
)

// Common request/response structures

// CredentialRequest is the credential payload nested in a user write.
type CredentialRequest struct {
	Username              string `json:"username" validate:"required"`
	Password              string `json:"password" validate:"required"`
	Role                  string `json:"role"`
	Enabled               bool   `json:"is_enabled"`
	AccountNonExpired     bool   `json:"is_account_non_expired"`
	AccountNonLocked      bool   `json:"is_account_non_locked"`
	CredentialsNonExpired bool   `json:"is_credentials_non_expired"`
}

// UserRequest defines the payload for the user create and update endpoints.
// UserID is honored only by the self-id update endpoint; the create and
// by-id update endpoints ignore it.
type UserRequest struct {
	UserID     int64              `json:"user_id"`
	FirstName  string             `json:"first_name" validate:"required"`
	LastName   string             `json:"last_name"`
	ImageURL   string             `json:"image_url"`
	Email      string             `json:"email"      validate:"required,email"`
	Phone      string             `json:"phone"`
	Credential *CredentialRequest `json:"credential,omitempty"`
}

// CredentialResponse mirrors a stored credential, secret material excluded.
type CredentialResponse struct {
	CredentialID          int64  `json:"credential_id"`
	UserID                int64  `json:"user_id"`
	Username              string `json:"username"`
	Role                  string `json:"role"`
	Enabled               bool   `json:"is_enabled"`
	AccountNonExpired     bool   `json:"is_account_non_expired"`
	AccountNonLocked      bool   `json:"is_account_non_locked"`
	CredentialsNonExpired bool   `json:"is_credentials_non_expired"`
}

// UserResponse defines the response shape for a single user.
type UserResponse struct {
	UserID     int64               `json:"user_id"`
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	ImageURL   string              `json:"image_url"`
	Email      string              `json:"email"`
	Phone      string              `json:"phone"`
	Credential *CredentialResponse `json:"credential,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// UserListResponse wraps the list endpoint's results.
type UserListResponse struct {
	Collection []UserResponse `json:"collection"`
}

// toDomain maps the request payload onto a domain user.
func (req *UserRequest) toDomain() *domain.User {
	user := &domain.User{
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	if req.Credential != nil {
		user.Credential = &domain.Credential{
			Username:              req.Credential.Username,
			Password:              req.Credential.Password,
			Role:                  req.Credential.Role,
			Enabled:               req.Credential.Enabled,
			AccountNonExpired:     req.Credential.AccountNonExpired,
			AccountNonLocked:      req.Credential.AccountNonLocked,
			CredentialsNonExpired: req.Credential.CredentialsNonExpired,
		}
	}

	return user
}

// newUserResponse maps a domain user to its response representation.
func newUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		UserID:    user.UserID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ImageURL:  user.ImageURL,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.Credential != nil {
		resp.Credential = &CredentialResponse{
			CredentialID:          user.Credential.CredentialID,
			UserID:                user.Credential.UserID,
			Username:              user.Credential.Username,
			Role:                  user.Credential.Role,
			Enabled:               user.Credential.Enabled,
			AccountNonExpired:     user.Credential.AccountNonExpired,
			AccountNonLocked:      user.Credential.AccountNonLocked,
			CredentialsNonExpired: user.Credential.CredentialsNonExpired,
		}
	}

	return resp
}
