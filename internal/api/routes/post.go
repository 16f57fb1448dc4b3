package routes

import (
	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers/post"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/relationships"
)

// RegisterPostRoutes registers post endpoints on the router.
// Reads accept an optional token so viewer state can be attached.
func RegisterPostRoutes(r chi.Router, service posts.Service, relationshipService relationships.Service, auth middleware.AuthMiddleware) {
	createHandler := post.NewCreateHandler(service)
	updateHandler := post.NewUpdateHandler(service)
	deleteHandler := post.NewDeleteHandler(service)
	getHandler := post.NewGetHandler(service, relationshipService)

	r.With(auth.OptionalAuth).Get("/api/posts", getHandler.HandleList)
	r.With(auth.OptionalAuth).Get("/api/posts/recent", getHandler.HandleRecent)
	r.With(auth.OptionalAuth).Get("/api/posts/search", getHandler.HandleSearch)
	r.With(auth.OptionalAuth).Get("/api/posts/{id}", getHandler.HandleGet)
	r.With(auth.OptionalAuth).Get("/api/users/{id}/posts", getHandler.HandleByCreator)

	r.With(auth.RequireAuth).Post("/api/posts", createHandler.HandleCreate)
	r.With(auth.RequireAuth).Get("/api/posts/{id}/edit", updateHandler.HandleGetForEdit)
	r.With(auth.RequireAuth).Put("/api/posts/{id}", updateHandler.HandleUpdate)
	r.With(auth.RequireAuth).Delete("/api/posts/{id}", deleteHandler.HandleDelete)

	// Saved posts are private to their owner
	r.With(auth.RequireAuth).Get("/api/users/{id}/saved", getHandler.HandleSaved)
}
