package user

import (
	"errors"
	"log"
	"net/http"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/core/users"
)

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case users.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, users.ErrUserNotFound):
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "User not found")
	case errors.Is(err, users.ErrUsernameTaken):
		handlers.WriteError(w, http.StatusConflict, "AlreadyExists", "Username already taken")
	case errors.Is(err, users.ErrNotAuthorized):
		handlers.WriteError(w, http.StatusForbidden, "NotAuthorized", "You can only edit your own profile")
	default:
		log.Printf("[USER] service error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Something went wrong, please try again")
	}
}
