package routes

import (
	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers/live"
)

// RegisterLiveRoutes registers the websocket that pushes stale notices
func RegisterLiveRoutes(r chi.Router, hub *live.Hub) {
	r.Handle("/live", hub)
}
