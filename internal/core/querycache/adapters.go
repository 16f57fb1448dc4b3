package querycache

import (
	"context"
	"strconv"

	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
)

// ActivityRecorder receives successful mutations, e.g. to publish them as events.
// Implementations must not fail the caller.
type ActivityRecorder interface {
	RelationshipToggled(ctx context.Context, kind relationships.Kind, ownerID, actorID string, outcome relationships.Outcome)
	PostChanged(ctx context.Context, change string, postID, creatorID string)
	ProfileUpdated(ctx context.Context, userID string)
}

// Post change names passed to ActivityRecorder.PostChanged
const (
	PostCreated = "created"
	PostUpdated = "updated"
	PostDeleted = "deleted"
)

type noActivity struct{}

func (noActivity) RelationshipToggled(context.Context, relationships.Kind, string, string, relationships.Outcome) {
}
func (noActivity) PostChanged(context.Context, string, string, string) {}
func (noActivity) ProfileUpdated(context.Context, string) {}

func orNoActivity(a ActivityRecorder) ActivityRecorder {
	if a == nil {
		return noActivity{}
	}
	return a
}

func pageCursor(cursor string, limit int) string {
	return posts.NormalizeCursor(cursor) + "|" + strconv.Itoa(limit)
}

// relationshipService invalidates dependent views after every toggle.
// Existence checks are viewer-specific and pass straight through.
type relationshipService struct {
	relationships.Service
	invalidator *Invalidator
	activity    ActivityRecorder
}

// WrapRelationships decorates a relationship service with invalidation
func WrapRelationships(inner relationships.Service, invalidator *Invalidator, activity ActivityRecorder) relationships.Service {
	return &relationshipService{Service: inner, invalidator: invalidator, activity: orNoActivity(activity)}
}

func (s *relationshipService) ToggleLike(ctx context.Context, postID, userID string) (*relationships.ToggleResult, error) {
	result, err := s.Service.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, AfterLikeOrSave(postID, userID)...)
	s.activity.RelationshipToggled(ctx, relationships.KindLike, postID, userID, result.Outcome)
	return result, nil
}

func (s *relationshipService) ToggleSave(ctx context.Context, postID, userID string) (*relationships.ToggleResult, error) {
	result, err := s.Service.ToggleSave(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, AfterLikeOrSave(postID, userID)...)
	s.activity.RelationshipToggled(ctx, relationships.KindSave, postID, userID, result.Outcome)
	return result, nil
}

func (s *relationshipService) ToggleFollow(ctx context.Context, followeeID, followerID string) (*relationships.ToggleResult, error) {
	result, err := s.Service.ToggleFollow(ctx, followeeID, followerID)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, AfterFollow(followeeID, followerID)...)
	s.activity.RelationshipToggled(ctx, relationships.KindFollow, followeeID, followerID, result.Outcome)
	return result, nil
}

// Reconcile rewrites counters directly in the store; any corrected counter
// may appear in every view that shows one.
func (s *relationshipService) Reconcile(ctx context.Context) ([]relationships.Drift, error) {
	drifts, err := s.Service.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	if len(drifts) > 0 {
		s.invalidator.Invalidate(ctx,
			Prefix(KindFeed, ""), Prefix(KindPost, ""), Prefix(KindProfile, ""), Prefix(KindUsers, ""),
			Prefix(KindSearch, ""), Prefix(KindSaved, ""), Prefix(KindCreatorPosts, ""),
			Prefix(KindFollowers, ""), Prefix(KindFollowees, ""))
	}
	return drifts, nil
}

// postService caches post reads and invalidates after mutations
type postService struct {
	posts.Service
	cache       Cache
	invalidator *Invalidator
	activity    ActivityRecorder
}

// WrapPosts decorates a post service with read-through caching and invalidation
func WrapPosts(inner posts.Service, cache Cache, invalidator *Invalidator, activity ActivityRecorder) posts.Service {
	return &postService{Service: inner, cache: cache, invalidator: invalidator, activity: orNoActivity(activity)}
}

func (s *postService) CreatePost(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
	post, err := s.Service.CreatePost(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, AfterPostMutation(post.ID, post.CreatorID)...)
	s.activity.PostChanged(ctx, PostCreated, post.ID, post.CreatorID)
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, req posts.UpdatePostRequest) (*posts.Post, error) {
	post, err := s.Service.UpdatePost(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, AfterPostMutation(post.ID, post.CreatorID)...)
	s.activity.PostChanged(ctx, PostUpdated, post.ID, post.CreatorID)
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, postID, actorID string) error {
	if err := s.Service.DeletePost(ctx, postID, actorID); err != nil {
		return err
	}
	// Only the creator can delete, so actorID is the creator
	s.invalidator.Invalidate(ctx, AfterPostMutation(postID, actorID)...)
	s.activity.PostChanged(ctx, PostDeleted, postID, actorID)
	return nil
}

func (s *postService) GetPost(ctx context.Context, postID string) (*posts.Post, error) {
	key := Key{Kind: KindPost, ID: postID}
	return Fetch(ctx, s.cache, key, TTLFor(KindPost), func(ctx context.Context) (*posts.Post, error) {
		return s.Service.GetPost(ctx, postID)
	})
}

func (s *postService) ListRecent(ctx context.Context) ([]*posts.Post, error) {
	key := Key{Kind: KindFeed, Cursor: "recent"}
	return Fetch(ctx, s.cache, key, TTLFor(KindFeed), s.Service.ListRecent)
}

func (s *postService) ListPage(ctx context.Context, params posts.ListParams) (*posts.Page, error) {
	key := Key{Kind: KindFeed, Cursor: pageCursor(params.Cursor, params.Limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindFeed), func(ctx context.Context) (*posts.Page, error) {
		return s.Service.ListPage(ctx, params)
	})
}

func (s *postService) Search(ctx context.Context, term string) ([]*posts.Post, error) {
	key := Key{Kind: KindSearch, ID: normalizeSearch(term)}
	return Fetch(ctx, s.cache, key, TTLFor(KindSearch), func(ctx context.Context) ([]*posts.Post, error) {
		return s.Service.Search(ctx, term)
	})
}

func (s *postService) ListSaved(ctx context.Context, userID string, params posts.ListParams) (*posts.Page, error) {
	key := Key{Kind: KindSaved, ID: userID, Cursor: pageCursor(params.Cursor, params.Limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindSaved), func(ctx context.Context) (*posts.Page, error) {
		return s.Service.ListSaved(ctx, userID, params)
	})
}

func (s *postService) ListByCreator(ctx context.Context, creatorID string, params posts.ListParams) (*posts.Page, error) {
	key := Key{Kind: KindCreatorPosts, ID: creatorID, Cursor: pageCursor(params.Cursor, params.Limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindCreatorPosts), func(ctx context.Context) (*posts.Page, error) {
		return s.Service.ListByCreator(ctx, creatorID, params)
	})
}

// userService caches profile and directory reads
type userService struct {
	users.UserService
	cache       Cache
	invalidator *Invalidator
	activity    ActivityRecorder
}

// WrapUsers decorates a user service with read-through caching and invalidation
func WrapUsers(inner users.UserService, cache Cache, invalidator *Invalidator, activity ActivityRecorder) users.UserService {
	return &userService{UserService: inner, cache: cache, invalidator: invalidator, activity: orNoActivity(activity)}
}

func (s *userService) CreateUser(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	user, err := s.UserService.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, Prefix(KindUsers, ""))
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req users.UpdateProfileRequest) (*users.User, error) {
	user, err := s.UserService.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, AfterProfileUpdate(req.UserID)...)
	s.activity.ProfileUpdated(ctx, req.UserID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*users.User, error) {
	key := Key{Kind: KindProfile, ID: id}
	return Fetch(ctx, s.cache, key, TTLFor(KindProfile), func(ctx context.Context) (*users.User, error) {
		return s.UserService.GetUser(ctx, id)
	})
}

func (s *userService) ListTopUsers(ctx context.Context, limit int) ([]*users.User, error) {
	key := Key{Kind: KindUsers, Cursor: "top|" + strconv.Itoa(limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindUsers), func(ctx context.Context) ([]*users.User, error) {
		return s.UserService.ListTopUsers(ctx, limit)
	})
}

func (s *userService) ListUsersPage(ctx context.Context, params users.ListParams) (*users.Page, error) {
	key := Key{Kind: KindUsers, Cursor: pageCursor(params.Cursor, params.Limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindUsers), func(ctx context.Context) (*users.Page, error) {
		return s.UserService.ListUsersPage(ctx, params)
	})
}

func (s *userService) ListFollowers(ctx context.Context, userID string, params users.ListParams) (*users.Page, error) {
	key := Key{Kind: KindFollowers, ID: userID, Cursor: pageCursor(params.Cursor, params.Limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindFollowers), func(ctx context.Context) (*users.Page, error) {
		return s.UserService.ListFollowers(ctx, userID, params)
	})
}

func (s *userService) ListFollowees(ctx context.Context, userID string, params users.ListParams) (*users.Page, error) {
	key := Key{Kind: KindFollowees, ID: userID, Cursor: pageCursor(params.Cursor, params.Limit)}
	return Fetch(ctx, s.cache, key, TTLFor(KindFollowees), func(ctx context.Context) (*users.Page, error) {
		return s.UserService.ListFollowees(ctx, userID, params)
	})
}
