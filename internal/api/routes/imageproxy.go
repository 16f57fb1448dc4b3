package routes

import (
	"github.com/go-chi/chi/v5"

	imageproxyhandlers "Snapgram/internal/api/handlers/imageproxy"
)

// RegisterImageProxyRoutes registers the derived preview endpoint.
//
// Route: GET /img/preview/{assetId}?w=&h=&gravity=&q=
//
// The endpoint supports ETag-based caching with If-None-Match headers.
func RegisterImageProxyRoutes(r chi.Router, handler *imageproxyhandlers.Handler) {
	r.Get("/img/preview/{assetId}", handler.HandlePreview)
}
