package post

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
)

// DeleteHandler handles post deletion
type DeleteHandler struct {
	service posts.Service
}

// NewDeleteHandler creates a new delete handler
func NewDeleteHandler(service posts.Service) *DeleteHandler {
	return &DeleteHandler{service: service}
}

// HandleDelete handles DELETE /api/posts/{id}
func (h *DeleteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	postID := chi.URLParam(r, "id")
	if err := h.service.DeletePost(r.Context(), postID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	log.Printf("[POST-DELETE] user=%s post=%s", userID, postID)
	w.WriteHeader(http.StatusNoContent)
}
