package imageproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/blobs"
	"Snapgram/internal/core/imageproxy"
)

const validAssetID = "3f2c8a51-6a0e-4d0b-9c55-0c8f1f3c9e21"

// mockService implements Service for testing
type mockService struct {
	getImageFunc func(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error)
}

func (m *mockService) GetImage(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error) {
	if m.getImageFunc != nil {
		return m.getImageFunc(ctx, assetID, opts)
	}
	return nil, errors.New("not implemented")
}

func previewRequest(t *testing.T, assetID, query string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/img/preview/"+assetID+"?"+query, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("assetId", assetID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlePreview_Success(t *testing.T) {
	var gotOpts blobs.PreviewOptions
	svc := &mockService{getImageFunc: func(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error) {
		assert.Equal(t, validAssetID, assetID)
		gotOpts = opts
		return []byte("jpeg-bytes"), nil
	}}

	w := httptest.NewRecorder()
	NewHandler(svc).HandlePreview(w, previewRequest(t, validAssetID, "gravity=top&h=2000&q=100&w=2000"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
	assert.NotEmpty(t, w.Header().Get("ETag"))
	assert.Equal(t, "jpeg-bytes", w.Body.String())
	assert.Equal(t, blobs.PostPreview, gotOpts)
}

func TestHandlePreview_URLFromBlobServiceRoundTrips(t *testing.T) {
	svc := &mockService{getImageFunc: func(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error) {
		assert.Equal(t, blobs.AvatarPreview, opts)
		return []byte("avatar"), nil
	}}

	previewURL := blobs.PreviewURL("https://snapgram.app", validAssetID, blobs.AvatarPreview)
	req := httptest.NewRequest(http.MethodGet, previewURL, nil)
	r := chi.NewRouter()
	r.Get("/img/preview/{assetId}", NewHandler(svc).HandlePreview)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlePreview_ETagMatch_Returns304(t *testing.T) {
	calls := 0
	svc := &mockService{getImageFunc: func(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error) {
		calls++
		return []byte("jpeg"), nil
	}}
	handler := NewHandler(svc)

	w := httptest.NewRecorder()
	handler.HandlePreview(w, previewRequest(t, validAssetID, "w=400&h=400&q=90"))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := previewRequest(t, validAssetID, "w=400&h=400&q=90")
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	handler.HandlePreview(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, 1, calls)
}

func TestHandlePreview_InvalidOptions_Returns400(t *testing.T) {
	svc := &mockService{}

	tests := []string{
		"h=400&q=90",
		"w=abc&h=400&q=90",
		"w=400&h=400&q=0",
		"w=400&h=400&q=90&gravity=sideways",
		"w=99999&h=400&q=90",
	}
	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(svc).HandlePreview(w, previewRequest(t, validAssetID, query))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandlePreview_ServiceErrors(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		wantStatus int
	}{
		{name: "not found", err: imageproxy.ErrSourceNotFound, wantStatus: http.StatusNotFound},
		{name: "timeout", err: imageproxy.ErrFetchTimeout, wantStatus: http.StatusGatewayTimeout},
		{name: "fetch failed", err: imageproxy.ErrFetchFailed, wantStatus: http.StatusBadGateway},
		{name: "bad asset id", err: imageproxy.ErrInvalidAssetID, wantStatus: http.StatusBadRequest},
		{name: "unsupported", err: imageproxy.ErrUnsupportedFormat, wantStatus: http.StatusBadRequest},
		{name: "processing", err: imageproxy.ErrProcessingFailed, wantStatus: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{getImageFunc: func(ctx context.Context, assetID string, opts blobs.PreviewOptions) ([]byte, error) {
				return nil, tt.err
			}}
			w := httptest.NewRecorder()
			NewHandler(svc).HandlePreview(w, previewRequest(t, validAssetID, "w=400&h=400&q=90"))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
