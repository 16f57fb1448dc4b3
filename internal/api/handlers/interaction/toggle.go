package interaction

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapgram/internal/api/handlers"
	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/relationships"
)

// ToggleResponse is the body of every toggle endpoint
type ToggleResponse struct {
	Relationship *relationships.Relationship `json:"relationship,omitempty"`
	Outcome      relationships.Outcome       `json:"outcome"`
	Active       bool                        `json:"active"`
}

// ToggleHandler serves like, save and follow toggles
type ToggleHandler struct {
	service relationships.Service
}

// NewToggleHandler creates a toggle handler
func NewToggleHandler(service relationships.Service) *ToggleHandler {
	return &ToggleHandler{service: service}
}

// HandleLike toggles the caller's like on a post
// POST /api/posts/{id}/like
func (h *ToggleHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleLike)
}

// HandleSave toggles the caller's save on a post
// POST /api/posts/{id}/save
func (h *ToggleHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleSave)
}

// HandleFollow toggles whether the caller follows the user
// POST /api/users/{id}/follow
func (h *ToggleHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleFollow)
}

type toggleFunc func(ctx context.Context, ownerID, actorID string) (*relationships.ToggleResult, error)

func (h *ToggleHandler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc) {
	actorID := middleware.GetUserID(r)
	if actorID == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	result, err := fn(r.Context(), chi.URLParam(r, "id"), actorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, ToggleResponse{
		Relationship: result.Relationship,
		Outcome:      result.Outcome,
		Active:       result.Created(),
	})
}
