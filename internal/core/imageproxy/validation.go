package imageproxy

import (
	"github.com/google/uuid"
)

// ValidateAssetID checks that an asset ID is a UUID as assigned by the blob service.
// Anything else (path separators, traversal sequences, arbitrary keys) is rejected
// before it reaches the object store.
func ValidateAssetID(assetID string) error {
	if assetID == "" {
		return ErrInvalidAssetID
	}
	if _, err := uuid.Parse(assetID); err != nil {
		return ErrInvalidAssetID
	}
	return nil
}
