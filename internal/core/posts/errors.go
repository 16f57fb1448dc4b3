package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post doesn't exist
	ErrNotFound = errors.New("post not found")

	// ErrNotAuthorized is returned when the actor isn't the post's creator
	ErrNotAuthorized = errors.New("user not authorized to modify this post")

	// ErrCreationFailed is returned when the post row couldn't be created.
	// Any asset uploaded for the post has been deleted by the time this is returned.
	ErrCreationFailed = errors.New("post creation failed")

	// ErrUpdateFailed is returned when the post row couldn't be updated.
	// The newly uploaded asset has been deleted; the previous one is untouched.
	ErrUpdateFailed = errors.New("post update failed")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
