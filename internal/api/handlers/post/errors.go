package post

import (
	"errors"
	"log"
	"net/http"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/core/posts"
)

// handleServiceError maps service errors to HTTP responses.
// Creation and update failures surface as the same generic failure.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case posts.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case posts.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Post not found")
	case errors.Is(err, posts.ErrNotAuthorized):
		handlers.WriteError(w, http.StatusForbidden, "NotAuthorized", "Only the creator can modify this post")
	default:
		log.Printf("[POST] service error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Something went wrong, please try again")
	}
}
