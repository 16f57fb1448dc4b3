package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Snapgram/internal/core/blobs"
)

// Fetcher defines the interface for reading source images.
type Fetcher interface {
	// Fetch returns the original bytes of an asset.
	Fetch(ctx context.Context, assetID string) ([]byte, error)
}

// DefaultMaxSourceSizeMB is the default maximum source image size if not configured.
const DefaultMaxSourceSizeMB = 10

const (
	breakerThreshold = 5
	breakerOpenFor   = 30 * time.Second
)

// BlobFetcher reads sources from the blob service behind a circuit breaker.
type BlobFetcher struct {
	blobs        blobs.Service
	breaker      *breaker
	timeout      time.Duration
	maxSizeBytes int
}

// NewBlobFetcher creates a fetcher with the specified timeout.
// maxSizeMB specifies the maximum allowed image size in megabytes (0 uses default of 10MB).
func NewBlobFetcher(blobService blobs.Service, timeout time.Duration, maxSizeMB int) *BlobFetcher {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSourceSizeMB
	}
	return &BlobFetcher{
		blobs:        blobService,
		breaker:      newBreaker(breakerThreshold, breakerOpenFor),
		timeout:      timeout,
		maxSizeBytes: maxSizeMB * 1024 * 1024,
	}
}

// Fetch reads an asset.
// Returns:
//   - ErrSourceNotFound if the asset does not exist
//   - ErrFetchTimeout if the read times out
//   - ErrImageTooLarge if the asset exceeds the size limit
//   - ErrFetchFailed for any other error, or while the circuit is open
func (f *BlobFetcher) Fetch(ctx context.Context, assetID string) ([]byte, error) {
	if err := f.breaker.allow(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	data, _, err := f.blobs.Open(ctx, assetID)
	if err != nil {
		switch {
		case errors.Is(err, blobs.ErrNotFound):
			f.breaker.success()
			return nil, ErrSourceNotFound
		case errors.Is(err, context.DeadlineExceeded):
			f.breaker.failure(err)
			return nil, ErrFetchTimeout
		default:
			f.breaker.failure(err)
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
	}
	f.breaker.success()

	if len(data) > f.maxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(data))
	}
	return data, nil
}
