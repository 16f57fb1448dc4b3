package blobs

import "errors"

var (
	// ErrNotFound is returned when an asset doesn't exist in the store
	ErrNotFound = errors.New("asset not found")

	// ErrEmpty is returned when an upload carries no data
	ErrEmpty = errors.New("asset data cannot be empty")

	// ErrUnsupportedType is returned for MIME types other than jpeg, png and webp
	ErrUnsupportedType = errors.New("unsupported MIME type (allowed: image/jpeg, image/png, image/webp)")

	// ErrTooLarge is returned when an upload exceeds MaxSize
	ErrTooLarge = errors.New("asset exceeds maximum size")
)
