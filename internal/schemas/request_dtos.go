// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is required and must be less than 20 characters
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type RegistrationRequest struct {
	Username  string `json:"username" validate:"required,max=20,username_validation"`
	FirstName string `json:"firstName" validate:"max=30"`
	LastName  string `json:"lastName" validate:"max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,password_validation"`
}

// LoginRequest is a struct that represents a login request
// Username is required and must be less than 20 characters
// Password is required and must be at least 8 characters
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=20,username_validation"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
}

// RefreshTokenRequest is a struct that represents a refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RecoverPasswordRequest is a struct that represents a password reset mail request
type RecoverPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewPasswordRequest is a struct that represents a set-new-password request.
// The uid and token authorizing it travel in the path, not the body.
type NewPasswordRequest struct {
	NewPassword    string `json:"newPassword" validate:"required,min=8,password_validation"`
	RepeatPassword string `json:"repeatPassword" validate:"required,min=8"`
}

// ChangePasswordRequest is a struct that represents a PasswordChange request
// OldPassword is required and must be at least 8 characters
// NewPassword is required and must be at least 8 characters
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8,password_validation"`
	NewPassword string `json:"newPassword" validate:"required,min=8,password_validation"`
}

// SaveSettingRequest is a struct that represents a settings upsert request
type SaveSettingRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"max=1000"`
}
