package routes

import (
	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers/interaction"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/relationships"
)

// RegisterInteractionRoutes registers the like, save and follow toggles.
// All of them act as the authenticated user.
func RegisterInteractionRoutes(r chi.Router, service relationships.Service, auth middleware.AuthMiddleware) {
	handler := interaction.NewToggleHandler(service)

	r.With(auth.RequireAuth).Post("/api/posts/{id}/like", handler.HandleLike)
	r.With(auth.RequireAuth).Post("/api/posts/{id}/save", handler.HandleSave)
	r.With(auth.RequireAuth).Post("/api/users/{id}/follow", handler.HandleFollow)
}
