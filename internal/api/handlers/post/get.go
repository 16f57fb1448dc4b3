package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/handlers/common"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/relationships"
)

// PageResponse is a cursor-paginated list of posts
type PageResponse struct {
	NextCursor string             `json:"nextCursor,omitempty"`
	Posts      []*common.PostView `json:"posts"`
}

// ListResponse is an unpaginated list of posts
type ListResponse struct {
	Posts []*common.PostView `json:"posts"`
}

// GetHandler serves post reads. Viewer state comes from the relationship service.
type GetHandler struct {
	service       posts.Service
	relationships relationships.Service
}

// NewGetHandler creates a new read handler; relationshipService may be nil
func NewGetHandler(service posts.Service, relationshipService relationships.Service) *GetHandler {
	return &GetHandler{service: service, relationships: relationshipService}
}

// HandleGet handles GET /api/posts/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	views := common.PostViews(r.Context(), r, h.relationships, []*posts.Post{post})
	handlers.WriteJSON(w, http.StatusOK, views[0])
}

// HandleRecent handles GET /api/posts/recent, the home feed
func (h *GetHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRecent(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeList(w, r, list)
}

// HandleList handles GET /api/posts?cursor=&limit=, the explore feed
func (h *GetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPage(r.Context(), pageParams(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, page)
}

// HandleSearch handles GET /api/posts/search?q=
func (h *GetHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writeList(w, r, list)
}

// HandleByCreator handles GET /api/users/{id}/posts
func (h *GetHandler) HandleByCreator(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListByCreator(r.Context(), chi.URLParam(r, "id"), pageParams(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, page)
}

// HandleSaved handles GET /api/users/{id}/saved. Saves are private, so only
// the owner may list them.
func (h *GetHandler) HandleSaved(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if viewer := middleware.GetUserID(r); viewer == "" || viewer != userID {
		handlers.WriteError(w, http.StatusForbidden, "NotAuthorized", "Saved posts are only visible to their owner")
		return
	}

	page, err := h.service.ListSaved(r.Context(), userID, pageParams(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.writePage(w, r, page)
}

func (h *GetHandler) writeList(w http.ResponseWriter, r *http.Request, list []*posts.Post) {
	handlers.WriteJSON(w, http.StatusOK, ListResponse{
		Posts: common.PostViews(r.Context(), r, h.relationships, list),
	})
}

func (h *GetHandler) writePage(w http.ResponseWriter, r *http.Request, page *posts.Page) {
	handlers.WriteJSON(w, http.StatusOK, PageResponse{
		NextCursor: page.NextCursor,
		Posts:      common.PostViews(r.Context(), r, h.relationships, page.Posts),
	})
}

func pageParams(r *http.Request) posts.ListParams {
	return posts.ListParams{
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  handlers.QueryLimit(r),
	}
}
