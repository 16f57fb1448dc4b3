// Package imageproxy provides the HTTP handler for derived image previews.
package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/core/blobs"
	"Snapgram/internal/core/imageproxy"
)

// Service renders a preview of a stored asset
type Service interface {
	GetImage(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error)
}

// Handler handles HTTP requests for image previews.
type Handler struct {
	service Service
}

// NewHandler creates a new image preview handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandlePreview handles GET /img/preview/{assetId}?w=&h=&gravity=&q=
// The rendition is fully determined by the URL, so responses are immutable.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetId")
	if assetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "missing asset id")
		return
	}

	opts, err := imageproxy.ParseOptions(r.URL.Query())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	etag := fmt.Sprintf(`"%s-%dx%d-%s-q%d"`, assetID, opts.Width, opts.Height, opts.Gravity, opts.Quality)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	imageData, err := h.service.GetImage(r.Context(), assetID, opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("ETag", etag)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(imageData); err != nil {
		slog.Warn("[IMAGE-PROXY] failed to write image response",
			"asset", assetID,
			"error", err,
		)
	}
}

// handleServiceError converts service errors to appropriate HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, imageproxy.ErrSourceNotFound):
		writeErrorResponse(w, http.StatusNotFound, "image not found")
	case errors.Is(err, imageproxy.ErrFetchTimeout):
		writeErrorResponse(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, imageproxy.ErrFetchFailed):
		writeErrorResponse(w, http.StatusBadGateway, "failed to read image from storage")
	case errors.Is(err, imageproxy.ErrInvalidAssetID):
		writeErrorResponse(w, http.StatusBadRequest, "invalid asset id")
	case errors.Is(err, imageproxy.ErrInvalidOptions):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, imageproxy.ErrUnsupportedFormat):
		writeErrorResponse(w, http.StatusBadRequest, "unsupported image format")
	case errors.Is(err, imageproxy.ErrImageTooLarge):
		writeErrorResponse(w, http.StatusBadRequest, "image too large")
	case errors.Is(err, imageproxy.ErrProcessingFailed):
		writeErrorResponse(w, http.StatusInternalServerError, "image processing failed")
	default:
		slog.Error("[IMAGE-PROXY] unhandled service error",
			"error", err,
		)
		writeErrorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeErrorResponse writes a plain text error response.
// The expected response is binary image data, so errors aren't JSON.
func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		slog.Warn("[IMAGE-PROXY] failed to write error response",
			"status", status,
			"message", message,
			"error", err,
		)
	}
}
