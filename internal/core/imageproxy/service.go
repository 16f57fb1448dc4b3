// Package imageproxy renders the derived preview of a stored asset.
//
// A preview URL carries its own derivation parameters (width, height, gravity,
// quality), so a rendition is a pure function of (asset, options):
//   - Service: validates, checks the cache, fetches, processes
//   - Cache: in-memory LRU of rendered previews
//   - Fetcher: reads source bytes from the blob store
//   - Processor: crop-fills and re-encodes as JPEG
package imageproxy

import (
	"context"
	"fmt"
	"log/slog"

	"Snapgram/internal/core/blobs"
	"Snapgram/internal/metrics"
)

// Service defines the interface for the preview service.
type Service interface {
	// GetImage returns the JPEG rendition of assetID for opts.
	GetImage(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error)
}

// ImageProxyService implements the Service interface and orchestrates
// caching, fetching, and processing of images.
type ImageProxyService struct {
	cache     Cache
	processor Processor
	fetcher   Fetcher
}

// NewService creates a new ImageProxyService with the provided dependencies.
// Returns an error if any required dependency is nil.
func NewService(cache Cache, processor Processor, fetcher Fetcher) (*ImageProxyService, error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: cache", ErrNilDependency)
	}
	if processor == nil {
		return nil, fmt.Errorf("%w: processor", ErrNilDependency)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher", ErrNilDependency)
	}

	return &ImageProxyService{
		cache:     cache,
		processor: processor,
		fetcher:   fetcher,
	}, nil
}

// GetImage retrieves the rendition of an asset.
// The service flow is:
//  1. Validate asset ID and options
//  2. Check cache for (asset, options) - return if hit
//  3. Fetch source from the blob store
//  4. Process image with options
//  5. Store in cache
func (s *ImageProxyService) GetImage(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error) {
	if err := ValidateAssetID(assetID); err != nil {
		return nil, err
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}

	key := cacheKey(assetID, opts)
	if cached, found := s.cache.Get(key); found {
		slog.Debug("[IMAGE-PROXY] cache hit", "asset", assetID, "key", key)
		metrics.ImagePreviews.WithLabelValues("hit", "ok").Inc()
		return cached, nil
	}

	raw, err := s.fetcher.Fetch(ctx, assetID)
	if err != nil {
		metrics.ImagePreviews.WithLabelValues("miss", "fetch_error").Inc()
		return nil, err
	}

	processed, err := s.processor.Process(raw, opts)
	if err != nil {
		metrics.ImagePreviews.WithLabelValues("miss", "process_error").Inc()
		return nil, err
	}
	metrics.ImagePreviews.WithLabelValues("miss", "ok").Inc()

	s.cache.Set(key, processed)
	slog.Debug("[IMAGE-PROXY] cached processed image",
		"asset", assetID,
		"key", key,
		"size_bytes", len(processed),
	)

	return processed, nil
}
