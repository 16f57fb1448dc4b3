package interaction

import (
	"errors"
	"log"
	"net/http"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/core/relationships"
)

// handleServiceError converts toggle errors to HTTP responses.
// Creation and counter failures surface as the same generic failure.
func handleServiceError(w http.ResponseWriter, err error) {
	var valErr *relationships.ValidationError
	switch {
	case errors.As(err, &valErr):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", valErr.Error())
	case errors.Is(err, relationships.ErrSelfFollow):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Users cannot follow themselves")
	case errors.Is(err, relationships.ErrSubjectNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "Post or user not found")
	case errors.Is(err, relationships.ErrAlreadyExists):
		handlers.WriteError(w, http.StatusConflict, "AlreadyExists", "A concurrent request already applied this change")
	default:
		log.Printf("[INTERACTION] toggle failed: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Something went wrong, please try again")
	}
}
