package post

import (
	"log"
	"net/http"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
)

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /api/posts (multipart: caption, location, tags, file).
// The creator is always the authenticated user.
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.service.CreatePost(r.Context(), posts.CreatePostRequest{
		CreatorID: userID,
		Caption:   form.caption(),
		Location:  form.Location,
		Tags:      form.Tags,
		File:      form.File,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	log.Printf("[POST-CREATE] user=%s post=%s", userID, created.ID)
	handlers.WriteJSON(w, http.StatusCreated, created)
}

func writeInvalid(w http.ResponseWriter, message string) {
	handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", message)
}

func writeTooLarge(w http.ResponseWriter) {
	handlers.WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large (max 6MB image)")
}
