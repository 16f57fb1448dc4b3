package imageproxy

import "errors"

var (
	// ErrInvalidOptions is returned when preview query parameters are missing or out of range.
	ErrInvalidOptions = errors.New("invalid preview options")

	// ErrInvalidAssetID is returned when an asset ID is not a UUID.
	ErrInvalidAssetID = errors.New("invalid asset ID")

	// ErrSourceNotFound is returned when the requested asset does not exist in the blob store.
	ErrSourceNotFound = errors.New("source image not found")

	// ErrFetchFailed is returned when reading an asset from the blob store fails for any other reason.
	ErrFetchFailed = errors.New("failed to fetch source image")

	// ErrFetchTimeout is returned when reading the source exceeds the configured timeout.
	ErrFetchTimeout = errors.New("source fetch timed out")

	// ErrUnsupportedFormat is returned when the source image format cannot be processed.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageTooLarge is returned when the source image exceeds the maximum allowed size.
	ErrImageTooLarge = errors.New("source image exceeds size limit")

	// ErrProcessingFailed is returned when image processing fails for any reason.
	ErrProcessingFailed = errors.New("image processing failed")

	// ErrNilDependency is returned when a required dependency is nil.
	ErrNilDependency = errors.New("required dependency is nil")
)
