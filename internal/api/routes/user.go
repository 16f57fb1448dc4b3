package routes

import (
	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers/user"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
)

// RegisterUserRoutes registers profile and user-list endpoints
func RegisterUserRoutes(r chi.Router, service users.UserService, relationshipService relationships.Service, auth middleware.AuthMiddleware) {
	getHandler := user.NewGetHandler(service, relationshipService)
	profileHandler := user.NewProfileHandler(service)

	r.With(auth.OptionalAuth).Get("/api/users", getHandler.HandleList)
	r.With(auth.OptionalAuth).Get("/api/users/top", getHandler.HandleTop)
	r.With(auth.OptionalAuth).Get("/api/users/{id}", getHandler.HandleGet)
	r.With(auth.OptionalAuth).Get("/api/users/{id}/followers", getHandler.HandleFollowers)
	r.With(auth.OptionalAuth).Get("/api/users/{id}/followees", getHandler.HandleFollowees)

	r.With(auth.RequireAuth).Post("/api/users", profileHandler.HandleCreate)
	r.With(auth.RequireAuth).Put("/api/users/{id}", profileHandler.HandleUpdate)
}
