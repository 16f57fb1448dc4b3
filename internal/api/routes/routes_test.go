package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/api/middleware"
	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
)

const testSecret = "routes-test-secret"

type stubPosts struct {
	posts.Service
	calls []string
}

func (s *stubPosts) ListRecent(context.Context) ([]*posts.Post, error) {
	s.calls = append(s.calls, "ListRecent")
	return []*posts.Post{}, nil
}

func (s *stubPosts) GetPost(_ context.Context, id string) (*posts.Post, error) {
	s.calls = append(s.calls, "GetPost:"+id)
	return &posts.Post{ID: id}, nil
}

func (s *stubPosts) ListByCreator(_ context.Context, creatorID string, _ posts.ListParams) (*posts.Page, error) {
	s.calls = append(s.calls, "ListByCreator:"+creatorID)
	return &posts.Page{Posts: []*posts.Post{}}, nil
}

type stubUsers struct {
	users.UserService
	calls []string
}

func (s *stubUsers) ListTopUsers(context.Context, int) ([]*users.User, error) {
	s.calls = append(s.calls, "ListTopUsers")
	return []*users.User{}, nil
}

func (s *stubUsers) GetUser(_ context.Context, id string) (*users.User, error) {
	s.calls = append(s.calls, "GetUser:"+id)
	return &users.User{ID: id}, nil
}

type stubRelationships struct {
	relationships.Service
	calls []string
}

func (s *stubRelationships) ToggleLike(_ context.Context, postID, userID string) (*relationships.ToggleResult, error) {
	s.calls = append(s.calls, "ToggleLike:"+postID+":"+userID)
	return &relationships.ToggleResult{Outcome: relationships.OutcomeCreated}, nil
}

func (s *stubRelationships) IsLiked(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s *stubRelationships) IsSaved(context.Context, string, string) (bool, error) {
	return false, nil
}

func newTestRouter() (chi.Router, *stubPosts, *stubUsers, *stubRelationships) {
	postService := &stubPosts{}
	userService := &stubUsers{}
	relationshipService := &stubRelationships{}
	auth := middleware.NewJWTAuthMiddleware(testSecret, nil)

	r := chi.NewRouter()
	RegisterInteractionRoutes(r, relationshipService, auth)
	RegisterPostRoutes(r, postService, relationshipService, auth)
	RegisterUserRoutes(r, userService, relationshipService, auth)
	return r, postService, userService, relationshipService
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestRoutes_StaticSegmentsWinOverIDs(t *testing.T) {
	r, postService, userService, _ := newTestRouter()

	for _, path := range []string{"/api/posts/recent", "/api/posts/p1", "/api/users/top", "/api/users/u1", "/api/users/u1/posts"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	assert.Equal(t, []string{"ListRecent", "GetPost:p1", "ListByCreator:u1"}, postService.calls)
	assert.Equal(t, []string{"ListTopUsers", "GetUser:u1"}, userService.calls)
}

func TestRoutes_MutationsRequireAuth(t *testing.T) {
	r, _, _, relationshipService := newTestRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts/p1/like"},
		{http.MethodPost, "/api/posts/p1/save"},
		{http.MethodPost, "/api/users/u2/follow"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/p1"},
		{http.MethodDelete, "/api/posts/p1"},
		{http.MethodPut, "/api/users/u1"},
		{http.MethodGet, "/api/users/u1/saved"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Empty(t, relationshipService.calls)
}

func TestRoutes_ToggleActsAsTokenSubject(t *testing.T) {
	r, _, _, relationshipService := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/like", nil)
	req.Header.Set("Authorization", bearer(t, "u7"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ToggleLike:p1:u7"}, relationshipService.calls)
}
