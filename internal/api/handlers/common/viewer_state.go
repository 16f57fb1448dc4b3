package common

import (
	"context"
	"log"
	"net/http"

	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
)

// PostViewerState is the authenticated user's relationship to a post
type PostViewerState struct {
	Liked bool `json:"liked"`
	Saved bool `json:"saved"`
}

// PostView is a post as returned by the API, with viewer state when authenticated
type PostView struct {
	*posts.Post
	Viewer *PostViewerState `json:"viewer,omitempty"`
}

// UserViewerState is the authenticated user's relationship to another user
type UserViewerState struct {
	Following bool `json:"following"`
}

// UserView is a user as returned by the API, with viewer state when authenticated
type UserView struct {
	*users.User
	Viewer *UserViewerState `json:"viewer,omitempty"`
}

// PostViews wraps posts and fills viewer state for authenticated requests.
// Viewer state is per-user and never cached; lookup failures are logged and
// leave the state empty rather than failing the read.
func PostViews(ctx context.Context, r *http.Request, rel relationships.Service, list []*posts.Post) []*PostView {
	views := make([]*PostView, 0, len(list))
	for _, p := range list {
		views = append(views, &PostView{Post: p})
	}

	viewerID := middleware.GetUserID(r)
	if rel == nil || viewerID == "" {
		return views
	}

	for _, v := range views {
		liked, err := rel.IsLiked(ctx, v.ID, viewerID)
		if err != nil {
			log.Printf("Warning: failed to load like state for post %s: %v", v.ID, err)
			continue
		}
		saved, err := rel.IsSaved(ctx, v.ID, viewerID)
		if err != nil {
			log.Printf("Warning: failed to load save state for post %s: %v", v.ID, err)
			continue
		}
		v.Viewer = &PostViewerState{Liked: liked, Saved: saved}
	}
	return views
}

// UserViews wraps users and fills follow state for authenticated requests
func UserViews(ctx context.Context, r *http.Request, rel relationships.Service, list []*users.User) []*UserView {
	views := make([]*UserView, 0, len(list))
	for _, u := range list {
		views = append(views, &UserView{User: u})
	}

	viewerID := middleware.GetUserID(r)
	if rel == nil || viewerID == "" {
		return views
	}

	for _, v := range views {
		if v.ID == viewerID {
			continue
		}
		following, err := rel.IsFollowing(ctx, v.ID, viewerID)
		if err != nil {
			log.Printf("Warning: failed to load follow state for user %s: %v", v.ID, err)
			continue
		}
		v.Viewer = &UserViewerState{Following: following}
	}
	return views
}
