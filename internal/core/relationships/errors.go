package relationships

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no relationship row exists for the requested pair
	ErrNotFound = errors.New("relationship not found")

	// ErrSubjectNotFound indicates the post or user being referenced doesn't exist
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrCreationFailed indicates the store accepted a create but returned no row identifier
	ErrCreationFailed = errors.New("relationship creation failed")

	// ErrAlreadyExists indicates a concurrent toggle created the same pair first
	ErrAlreadyExists = errors.New("relationship already exists")

	// ErrSelfFollow indicates a user attempted to follow themselves
	ErrSelfFollow = errors.New("users cannot follow themselves")
)

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

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
