package users

import (
	"errors"
	"fmt"
)

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when attempting to use a username that belongs to another user
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNotAuthorized is returned when an actor tries to edit someone else's profile
	ErrNotAuthorized = errors.New("user not authorized to modify this profile")

	// ErrUpdateFailed is returned when the profile row couldn't be written.
	// A newly uploaded avatar has been deleted by the time this is returned.
	ErrUpdateFailed = errors.New("profile update failed")
)

type InvalidUsernameError struct {
	Username string
	Reason   string
}

func (e *InvalidUsernameError) Error() string {
	return fmt.Sprintf("invalid username %q: %s", e.Username, e.Reason)
}

type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email address: %q", e.Email)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err is any of the user input errors
func IsValidationError(err error) bool {
	var valErr *ValidationError
	var usernameErr *InvalidUsernameError
	var emailErr *InvalidEmailError
	return errors.As(err, &valErr) || errors.As(err, &usernameErr) || errors.As(err, &emailErr)
}
