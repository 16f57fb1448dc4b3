package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
)

// UpdateHandler handles post edits
type UpdateHandler struct {
	service posts.Service
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(service posts.Service) *UpdateHandler {
	return &UpdateHandler{service: service}
}

// HandleUpdate handles PUT /api/posts/{id} (multipart).
// Absent caption, location or tags fields keep the current values; no file keeps the image.
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	form, err := parsePostForm(w, r)
	if err != nil {
		writeFormError(w, err)
		return
	}

	req := posts.UpdatePostRequest{
		PostID:   chi.URLParam(r, "id"),
		ActorID:  userID,
		Caption:  form.Caption,
		Location: form.Location,
		File:     form.File,
	}
	if form.HasTags {
		req.Tags = form.Tags
	}

	updated, err := h.service.UpdatePost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, updated)
}

// HandleGetForEdit handles GET /api/posts/{id}/edit; only the creator gets the post
func (h *UpdateHandler) HandleGetForEdit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	post, err := h.service.GetPostForEdit(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}
