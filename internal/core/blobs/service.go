package blobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxSize is the upload limit (6MB = 6291456 bytes)
const MaxSize = 6291456

// Store is the raw object storage backing the service (S3/MinIO in production)
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns ErrNotFound when key doesn't exist
	Get(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Service defines the interface for blob operations
type Service interface {
	// Upload validates and stores data, returning the new asset with its assigned ID
	Upload(ctx context.Context, data []byte, mimeType string) (*Asset, error)

	// Delete removes an asset. Deleting a missing asset is not an error.
	Delete(ctx context.Context, assetID string) error

	// Open returns the stored bytes and content type of an asset
	Open(ctx context.Context, assetID string) ([]byte, string, error)

	// PreviewURL derives the preview URL for assetID with the service's base URL
	PreviewURL(assetID string, opts PreviewOptions) string
}

type blobService struct {
	store   Store
	logger  *slog.Logger
	baseURL string
}

// NewBlobService creates a new blob service.
// baseURL is the public origin previews are served from (e.g. "https://snapgram.app").
func NewBlobService(store Store, baseURL string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &blobService{
		store:   store,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Upload stores binary data under a fresh asset ID
// Flow:
// 1. Validate inputs (non-empty, size, MIME type; sniffed when not given)
// 2. Generate asset ID
// 3. Put into the object store
func (s *blobService) Upload(ctx context.Context, data []byte, mimeType string) (*Asset, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d bytes (6MB)", ErrTooLarge, len(data), MaxSize)
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	mimeType = normalizeMimeType(mimeType)
	if !isValidMimeType(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	asset := &Asset{
		ID:       uuid.NewString(),
		MimeType: mimeType,
		Size:     len(data),
	}
	if err := s.store.Put(ctx, asset.ID, mimeType, data); err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}

	s.logger.Info("asset uploaded", "asset", asset.ID, "mime", mimeType, "size", asset.Size)
	return asset, nil
}

func (s *blobService) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}
	if err := s.store.Remove(ctx, assetID); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", assetID, err)
	}
	s.logger.Info("asset deleted", "asset", assetID)
	return nil
}

func (s *blobService) Open(ctx context.Context, assetID string) ([]byte, string, error) {
	if assetID == "" {
		return nil, "", ErrNotFound
	}
	data, contentType, err := s.store.Get(ctx, assetID)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

func (s *blobService) PreviewURL(assetID string, opts PreviewOptions) string {
	return PreviewURL(s.baseURL, assetID, opts)
}

// normalizeMimeType converts non-standard MIME types to their standard equivalents
// Common case: many clients send image/jpg instead of the standard image/jpeg
func normalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case "image/jpg":
		return "image/jpeg"
	default:
		return mimeType
	}
}

// isValidMimeType checks if the MIME type is allowed for uploads
func isValidMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}
