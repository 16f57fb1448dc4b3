package user

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/handlers/common"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/blobs"
	"Snapgram/internal/core/users"
)

const maxFormBytes = blobs.MaxSize + 1<<20

// CreateProfileRequest is the body of POST /api/users
type CreateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileHandler handles profile writes for the authenticated user
type ProfileHandler struct {
	service users.UserService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service users.UserService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// HandleCreate handles POST /api/users, creating the profile row for the
// token subject. Accounts themselves are issued elsewhere.
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	var req CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), users.CreateUserRequest{
		ID:       userID,
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	log.Printf("[USER-CREATE] user=%s username=%s", user.ID, user.Username)
	handlers.WriteJSON(w, http.StatusCreated, user)
}

// HandleUpdate handles PUT /api/users/{id} (multipart: name, username, bio, file).
// A missing file keeps the current avatar.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.WriteError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large (max 6MB image)")
			return
		}
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "Invalid multipart body")
		return
	}

	file, err := readAvatar(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), users.UpdateProfileRequest{
		UserID:   chi.URLParam(r, "id"),
		ActorID:  userID,
		Name:     r.FormValue("name"),
		Username: r.FormValue("username"),
		Bio:      r.FormValue("bio"),
		File:     file,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	log.Printf("[USER-UPDATE] user=%s", updated.ID)
	handlers.WriteJSON(w, http.StatusOK, updated)
}

func readAvatar(r *http.Request) (*blobs.File, error) {
	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, blobs.MaxSize+1))
	if err != nil {
		return nil, err
	}
	return &blobs.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(v)
}

// redact hides email addresses of everyone but the viewer
func redact(r *http.Request, views []*common.UserView) []*common.UserView {
	viewerID := middleware.GetUserID(r)
	for i, v := range views {
		if v.User == nil || v.Email == "" || v.ID == viewerID {
			continue
		}
		copied := *v.User
		copied.Email = ""
		views[i] = &common.UserView{User: &copied, Viewer: v.Viewer}
	}
	return views
}
