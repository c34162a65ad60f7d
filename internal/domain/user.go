package domain

import (
	"errors"
	"time"
)

// Common validation errors
var (
	ErrEmptyFirstName = errors.New("first name cannot be blank")
	ErrEmptyEmail     = errors.New("email cannot be blank")
	ErrEmptyUsername  = errors.New("username cannot be blank")
	ErrEmptyPassword  = errors.New("password cannot be blank")
)

// User represents a registered account holder. It is the root of the
// user/credential aggregate: the optional Credential is owned by the user
// and is only ever written as a side effect of a user write.
type User struct {
	UserID     int64       `json:"user_id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	ImageURL   string      `json:"image_url"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Credential *Credential `json:"credential,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Credential holds the authentication material owned by a User.
// Exactly one credential may reference a given user at a time; the unique
// index on username is enforced by the database, not here.
// The password is opaque secret material to this service.
type Credential struct {
	CredentialID          int64  `json:"credential_id"`
	UserID                int64  `json:"user_id"`
	Username              string `json:"username"`
	Password              string `json:"-"` // Never expose secret material in JSON
	Role                  string `json:"role"`
	Enabled               bool   `json:"is_enabled"`
	AccountNonExpired     bool   `json:"is_account_non_expired"`
	AccountNonLocked      bool   `json:"is_account_non_locked"`
	CredentialsNonExpired bool   `json:"is_credentials_non_expired"`
}

// Validate checks if the User has valid data.
// IDs are not checked: they are assigned by the store on first save.
func (u *User) Validate() error {
	if u.FirstName == "" {
		return NewValidationError("firstName", "must not be blank", ErrEmptyFirstName)
	}

	if u.Email == "" {
		return NewValidationError("email", "must not be blank", ErrEmptyEmail)
	}

	if u.Credential != nil {
		return u.Credential.Validate()
	}

	return nil
}

// Validate checks if the Credential has valid data.
func (c *Credential) Validate() error {
	if c.Username == "" {
		return NewValidationError("username", "must not be blank", ErrEmptyUsername)
	}

	if c.Password == "" {
		return NewValidationError("password", "must not be blank", ErrEmptyPassword)
	}

	return nil
}

// Equal reports whether two users are field-equal, credentials included.
// Timestamps are excluded so that database round-trip precision does not
// affect duplicate collapsing.
func (u *User) Equal(o *User) bool {
	if u == nil || o == nil {
		return u == o
	}

	if u.UserID != o.UserID ||
		u.FirstName != o.FirstName ||
		u.LastName != o.LastName ||
		u.ImageURL != o.ImageURL ||
		u.Email != o.Email ||
		u.Phone != o.Phone {
		return false
	}

	if u.Credential == nil || o.Credential == nil {
		return u.Credential == o.Credential
	}

	return *u.Credential == *o.Credential
}
