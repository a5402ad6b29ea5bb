package schemas

// CustomError is the user-facing error envelope. The message is deliberately
// generic for every authentication and token failure so the response never
// reveals which part of a check failed.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// BadRequest is returned when the request body fails decoding or validation.
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	// UsernameTaken is returned on registration with a duplicate username.
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	// InvalidCredentials covers both an unknown username and a wrong password.
	InvalidCredentials = &CustomError{
		Code:    "ERR-003",
		Message: "The credentials are invalid. Please check the username and password and try again.",
	}
	// UserNotFound is returned when a path references a user that does not exist.
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found. Please check the username and try again.",
	}
	// InvalidLink covers a malformed uid, an unknown user and a bad or expired
	// lifecycle token alike.
	InvalidLink = &CustomError{
		Code:    "ERR-005",
		Message: "The link is invalid or has expired. Please request a new one and try again.",
	}
	// UserNotActivated is returned on login before the account was activated.
	UserNotActivated = &CustomError{
		Code:    "ERR-006",
		Message: "The account is not activated yet. Please check your mails for the activation link.",
	}
	// UserAlreadyActivated guards the activation link against replay.
	UserAlreadyActivated = &CustomError{
		Code:    "ERR-007",
		Message: "The account is already activated.",
	}
	// EmailTaken is returned on registration with a duplicate email.
	EmailTaken = &CustomError{
		Code:    "ERR-008",
		Message: "The email is already registered. Please try another email.",
	}
	// PasswordMismatch is returned when the new password and its repetition differ.
	PasswordMismatch = &CustomError{
		Code:    "ERR-009",
		Message: "The passwords do not match. Please check both fields and try again.",
	}
	// EmailNotSent reports a failed mail dispatch after the state change committed.
	EmailNotSent = &CustomError{
		Code:    "ERR-010",
		Message: "The email could not be sent. Please try again later or contact the administrator.",
	}
	// DatabaseError is the generic persistence failure.
	DatabaseError = &CustomError{
		Code:    "ERR-011",
		Message: "A database error occurred. Please try again and contact the administrator if it persists.",
	}
	// InternalServerError is the catch-all for unexpected conditions.
	InternalServerError = &CustomError{
		Code:    "ERR-012",
		Message: "An internal error occurred. Please try again and contact the administrator if it persists.",
	}
	// InvalidToken is returned for a JWT that does not verify.
	InvalidToken = &CustomError{
		Code:    "ERR-013",
		Message: "The token is invalid. Please login again.",
	}
	// Unauthorized is returned when authentication is required but missing.
	Unauthorized = &CustomError{
		Code:    "ERR-014",
		Message: "The request is unauthorized. Please login to your account.",
	}
	// SettingNotFound is returned for lookups of unknown setting keys.
	SettingNotFound = &CustomError{
		Code:    "ERR-015",
		Message: "The setting was not found. Please check the key and try again.",
	}
)
