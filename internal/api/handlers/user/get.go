package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/handlers/common"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
)

// PageResponse is a cursor-paginated list of users
type PageResponse struct {
	NextCursor string             `json:"nextCursor,omitempty"`
	Users      []*common.UserView `json:"users"`
}

// GetHandler serves profile and user-list reads
type GetHandler struct {
	service       users.UserService
	relationships relationships.Service
}

// NewGetHandler creates a new read handler; relationshipService may be nil
func NewGetHandler(service users.UserService, relationshipService relationships.Service) *GetHandler {
	return &GetHandler{service: service, relationships: relationshipService}
}

// HandleGet handles GET /api/users/{id}. The email address is only returned to its owner.
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	views := common.UserViews(r.Context(), r, h.relationships, []*users.User{user})
	handlers.WriteJSON(w, http.StatusOK, redact(r, views)[0])
}

// HandleList handles GET /api/users?cursor=&limit=, or a username lookup with ?username=
func (h *GetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if username := r.URL.Query().Get("username"); username != "" {
		user, err := h.service.GetUserByUsername(r.Context(), username)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		views := common.UserViews(r.Context(), r, h.relationships, []*users.User{user})
		handlers.WriteJSON(w, http.StatusOK, redact(r, views)[0])
		return
	}

	page, err := h.service.ListUsersPage(r.Context(), pageParams(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, page)
}

// HandleTop handles GET /api/users/top?limit=
func (h *GetHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListTopUsers(r.Context(), handlers.QueryLimit(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, &users.Page{Users: list})
}

// HandleFollowers handles GET /api/users/{id}/followers
func (h *GetHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListFollowers(r.Context(), chi.URLParam(r, "id"), pageParams(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, page)
}

// HandleFollowees handles GET /api/users/{id}/followees
func (h *GetHandler) HandleFollowees(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListFollowees(r.Context(), chi.URLParam(r, "id"), pageParams(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, page)
}

func (h *GetHandler) writePage(w http.ResponseWriter, r *http.Request, page *users.Page) {
	views := common.UserViews(r.Context(), r, h.relationships, page.Users)
	handlers.WriteJSON(w, http.StatusOK, PageResponse{
		NextCursor: page.NextCursor,
		Users:      redact(r, views),
	})
}

func pageParams(r *http.Request) users.ListParams {
	return users.ListParams{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  handlers.QueryLimit(r),
	}
}
