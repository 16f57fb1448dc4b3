package querycache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/posts"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/core/users"
)

type recordingNotifier struct {
	keys [][]Key
	mu   sync.Mutex
}

func (n *recordingNotifier) NotifyStale(keys []Key) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.keys = append(n.keys, keys)
}

type recordingBroadcaster struct {
	sent [][]Key
	err  error
}

func (b *recordingBroadcaster) BroadcastInvalidation(ctx context.Context, keys []Key) error {
	b.sent = append(b.sent, keys)
	return b.err
}

type recordingActivity struct {
	toggles  []relationships.Outcome
	posts    []string
	profiles []string
}

func (a *recordingActivity) RelationshipToggled(ctx context.Context, kind relationships.Kind, ownerID, actorID string, outcome relationships.Outcome) {
	a.toggles = append(a.toggles, outcome)
}

func (a *recordingActivity) PostChanged(ctx context.Context, change, postID, creatorID string) {
	a.posts = append(a.posts, change+":"+postID)
}

func (a *recordingActivity) ProfileUpdated(ctx context.Context, userID string) {
	a.profiles = append(a.profiles, userID)
}

// stubRelationships returns canned toggle results
type stubRelationships struct {
	relationships.Service
	err error
}

func (s *stubRelationships) ToggleLike(ctx context.Context, postID, userID string) (*relationships.ToggleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &relationships.ToggleResult{Outcome: relationships.OutcomeCreated}, nil
}

func (s *stubRelationships) ToggleFollow(ctx context.Context, followeeID, followerID string) (*relationships.ToggleResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &relationships.ToggleResult{Outcome: relationships.OutcomeRemoved}, nil
}

// stubPosts counts reads
type stubPosts struct {
	posts.Service
	getCalls int
}

func (s *stubPosts) GetPost(ctx context.Context, postID string) (*posts.Post, error) {
	s.getCalls++
	return &posts.Post{ID: postID, LikesCount: s.getCalls}, nil
}

func (s *stubPosts) CreatePost(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
	return &posts.Post{ID: "new", CreatorID: req.CreatorID}, nil
}

// stubUsers counts reads
type stubUsers struct {
	users.UserService
	getCalls int
}

func (s *stubUsers) GetUser(ctx context.Context, id string) (*users.User, error) {
	s.getCalls++
	return &users.User{ID: id, FollowersCount: s.getCalls}, nil
}

func seed(t *testing.T, c Cache, keys ...Key) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, c.Set(context.Background(), k, []byte("1"), ShortTTL))
	}
}

func present(c Cache, k Key) bool {
	_, found, _ := c.Get(context.Background(), k)
	return found
}

func TestWrapRelationships_InvalidatesAfterSuccess(t *testing.T) {
	cache := NewMemoryCache(32)
	notifier := &recordingNotifier{}
	peers := &recordingBroadcaster{}
	activity := &recordingActivity{}
	inv := NewInvalidator(cache, notifier, peers, nil)
	svc := WrapRelationships(&stubRelationships{}, inv, activity)
	ctx := context.Background()

	feed := Key{Kind: KindFeed, Cursor: "recent"}
	post := Key{Kind: KindPost, ID: "p1"}
	otherPost := Key{Kind: KindPost, ID: "p2"}
	profile := Key{Kind: KindProfile, ID: "u1"}
	seed(t, cache, feed, post, otherPost, profile)

	result, err := svc.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, result.Created())

	assert.False(t, present(cache, feed))
	assert.False(t, present(cache, post))
	assert.False(t, present(cache, profile))
	assert.True(t, present(cache, otherPost))

	require.Len(t, notifier.keys, 1)
	require.Len(t, peers.sent, 1)
	assert.Equal(t, []relationships.Outcome{relationships.OutcomeCreated}, activity.toggles)
}

func TestWrapRelationships_FollowInvalidatesBothParticipants(t *testing.T) {
	cache := NewMemoryCache(32)
	svc := WrapRelationships(&stubRelationships{}, NewInvalidator(cache, nil, nil, nil), nil)

	keys := []Key{
		{Kind: KindFollowers, ID: "a", Cursor: "|10"},
		{Kind: KindFollowers, ID: "b", Cursor: "|10"},
		{Kind: KindFollowees, ID: "a", Cursor: "|10"},
		{Kind: KindFollowees, ID: "b", Cursor: "|10"},
		{Kind: KindProfile, ID: "a"},
		{Kind: KindProfile, ID: "b"},
	}
	seed(t, cache, keys...)
	untouched := Key{Kind: KindFollowers, ID: "c", Cursor: "|10"}
	seed(t, cache, untouched)

	_, err := svc.ToggleFollow(context.Background(), "a", "b")
	require.NoError(t, err)

	for _, k := range keys {
		assert.False(t, present(cache, k), "%s should be invalidated", k.String())
	}
	assert.True(t, present(cache, untouched))
}

func TestWrapRelationships_NoInvalidationOnFailure(t *testing.T) {
	cache := NewMemoryCache(32)
	peers := &recordingBroadcaster{}
	activity := &recordingActivity{}
	svc := WrapRelationships(&stubRelationships{err: errors.New("boom")}, NewInvalidator(cache, nil, peers, nil), activity)

	feed := Key{Kind: KindFeed, Cursor: "recent"}
	seed(t, cache, feed)

	_, err := svc.ToggleLike(context.Background(), "p1", "u1")
	require.Error(t, err)
	assert.True(t, present(cache, feed))
	assert.Empty(t, peers.sent)
	assert.Empty(t, activity.toggles)
}

func TestInvalidator_BroadcastFailureIsNotFatal(t *testing.T) {
	cache := NewMemoryCache(8)
	inv := NewInvalidator(cache, nil, &recordingBroadcaster{err: errors.New("nats down")}, nil)
	seed(t, cache, Key{Kind: KindFeed})

	inv.Invalidate(context.Background(), Prefix(KindFeed, ""))
	assert.False(t, present(cache, Key{Kind: KindFeed}))
}

func TestInvalidator_ApplyRemoteDoesNotRebroadcast(t *testing.T) {
	cache := NewMemoryCache(8)
	peers := &recordingBroadcaster{}
	notifier := &recordingNotifier{}
	inv := NewInvalidator(cache, notifier, peers, nil)
	seed(t, cache, Key{Kind: KindUsers, Cursor: "top|10"})

	inv.ApplyRemote(context.Background(), []Key{Prefix(KindUsers, "")})
	assert.False(t, present(cache, Key{Kind: KindUsers, Cursor: "top|10"}))
	assert.Empty(t, peers.sent)
	assert.Len(t, notifier.keys, 1)
}

func TestWrapPosts_CachesReadsAndInvalidatesOnCreate(t *testing.T) {
	cache := NewMemoryCache(32)
	inner := &stubPosts{}
	activity := &recordingActivity{}
	svc := WrapPosts(inner, cache, NewInvalidator(cache, nil, nil, nil), activity)
	ctx := context.Background()

	first, err := svc.GetPost(ctx, "p1")
	require.NoError(t, err)
	second, err := svc.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, first.LikesCount, second.LikesCount)
	assert.Equal(t, 1, inner.getCalls)

	profile := Key{Kind: KindProfile, ID: "creator"}
	seed(t, cache, profile)
	_, err = svc.CreatePost(ctx, posts.CreatePostRequest{CreatorID: "creator"})
	require.NoError(t, err)
	assert.False(t, present(cache, profile))
	assert.Equal(t, []string{"created:new"}, activity.posts)
}

func TestWrapUsers_CachesProfile(t *testing.T) {
	cache := NewMemoryCache(32)
	inner := &stubUsers{}
	svc := WrapUsers(inner, cache, NewInvalidator(cache, nil, nil, nil), nil)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	_, err = svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.getCalls)

	// A follow toggle elsewhere drops the profile; the next read refetches
	NewInvalidator(cache, nil, nil, nil).Invalidate(ctx, AfterFollow("u1", "u2")...)
	user, err := svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.getCalls)
	assert.Equal(t, 2, user.FollowersCount)
}
