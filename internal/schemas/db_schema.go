// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a dashboard account.
type User struct {
	ID          *uuid.UUID `json:"id"`           // Unique identifier for the user.
	Username    string     `json:"username"`     // Username of the user.
	FirstName   string     `json:"first_name"`   // First name of the user.
	LastName    string     `json:"last_name"`    // Last name of the user.
	Email       string     `json:"email"`        // Email address of the user.
	Password    string     `json:"password"`     // Password hash of the user.
	CreatedAt   *time.Time `json:"created_at"`   // Timestamp when the user was created.
	ActivatedAt *time.Time `json:"activated_at"` // Timestamp when the user account was activated.
	LastLogin   *time.Time `json:"last_login"`   // Timestamp of the most recent login, nil before first login.
}

// Profile holds the per-user dashboard preferences. A user row can exist
// without a profile row; login repairs that by inserting a minimal one.
type Profile struct {
	UserID     *uuid.UUID `json:"user_id"`
	Salutation string     `json:"salutation"`
	PhotoURL   string     `json:"photo_url"`
	CreatedAt  *time.Time `json:"created_at"`
}

// Session is a server-side login session. The session id is carried inside
// the JWT, so deleting the row invalidates the token.
type Session struct {
	ID        *uuid.UUID `json:"id"`
	UserID    *uuid.UUID `json:"user_id"`
	CreatedAt *time.Time `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// SystemSetting is one key/value pair of the dashboard configuration
// (ONA endpoints, site naming, per-form toggles).
type SystemSetting struct {
	ID        *uuid.UUID `json:"id"`
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	UpdatedAt *time.Time `json:"updated_at"`
}
