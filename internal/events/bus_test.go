package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/querycache"
	"Snapgram/internal/core/relationships"
)

type published struct {
	eventType Type
	key       string
	event     Event
}

type fakePublisher struct {
	err  error
	sent []published
	mu   sync.Mutex
}

func (f *fakePublisher) Publish(ctx context.Context, eventType Type, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	f.sent = append(f.sent, published{eventType: eventType, key: key, event: e})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestBus_RelationshipToggled(t *testing.T) {
	pub := &fakePublisher{}
	bus := NewBus(pub, "instance-a", nil)

	bus.RelationshipToggled(context.Background(), relationships.KindFollow, "followee", "follower", relationships.OutcomeCreated)

	require.Len(t, pub.sent, 1)
	sent := pub.sent[0]
	assert.Equal(t, TypeRelationshipToggled, sent.eventType)
	assert.Equal(t, "followee", sent.key)
	assert.Equal(t, "instance-a", sent.event.Origin)
	assert.Equal(t, "follow", sent.event.Kind)
	assert.Equal(t, "created", sent.event.Outcome)
	assert.Equal(t, "follower", sent.event.ActorID)
	assert.NotEmpty(t, sent.event.ID)
	assert.False(t, sent.event.OccurredAt.IsZero())
}

func TestBus_PostChanged(t *testing.T) {
	tests := []struct {
		change string
		want   Type
	}{
		{change: querycache.PostCreated, want: TypePostCreated},
		{change: querycache.PostUpdated, want: TypePostUpdated},
		{change: querycache.PostDeleted, want: TypePostDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.change, func(t *testing.T) {
			pub := &fakePublisher{}
			NewBus(pub, "a", nil).PostChanged(context.Background(), tt.change, "post-1", "creator-1")

			require.Len(t, pub.sent, 1)
			assert.Equal(t, tt.want, pub.sent[0].eventType)
			assert.Equal(t, "post-1", pub.sent[0].key)
			assert.Equal(t, "creator-1", pub.sent[0].event.UserID)
		})
	}

	t.Run("unknown change is dropped", func(t *testing.T) {
		pub := &fakePublisher{}
		NewBus(pub, "a", nil).PostChanged(context.Background(), "archived", "post-1", "creator-1")
		assert.Empty(t, pub.sent)
	})
}

func TestBus_ActivityFailureIsSwallowed(t *testing.T) {
	bus := NewBus(&fakePublisher{err: errors.New("broker down")}, "a", nil)

	assert.NotPanics(t, func() {
		bus.ProfileUpdated(context.Background(), "u1")
	})
}

func TestBus_BroadcastInvalidationReturnsError(t *testing.T) {
	bus := NewBus(&fakePublisher{err: errors.New("broker down")}, "a", nil)
	err := bus.BroadcastInvalidation(context.Background(), []querycache.Key{querycache.Prefix(querycache.KindFeed, "")})
	assert.Error(t, err)
}

func TestBus_RandomOrigin(t *testing.T) {
	a := NewBus(nil, "", nil)
	b := NewBus(nil, "", nil)
	assert.NotEmpty(t, a.Origin())
	assert.NotEqual(t, a.Origin(), b.Origin())
}

type recordingApplier struct {
	applied [][]querycache.Key
}

func (r *recordingApplier) ApplyRemote(ctx context.Context, prefixes []querycache.Key) {
	r.applied = append(r.applied, prefixes)
}

func TestInvalidationListener_Handle(t *testing.T) {
	keys := []querycache.Key{querycache.Prefix(querycache.KindProfile, "u1")}

	encode := func(origin string) []byte {
		pub := &fakePublisher{}
		bus := NewBus(pub, origin, nil)
		require.NoError(t, bus.BroadcastInvalidation(context.Background(), keys))
		data, err := json.Marshal(pub.sent[0].event)
		require.NoError(t, err)
		return data
	}

	t.Run("applies peer invalidation", func(t *testing.T) {
		applier := &recordingApplier{}
		NewInvalidationListener(applier, "self", nil).Handle(context.Background(), encode("peer"))
		require.Len(t, applier.applied, 1)
		assert.Equal(t, keys, applier.applied[0])
	})

	t.Run("ignores own invalidation", func(t *testing.T) {
		applier := &recordingApplier{}
		NewInvalidationListener(applier, "self", nil).Handle(context.Background(), encode("self"))
		assert.Empty(t, applier.applied)
	})

	t.Run("ignores garbage", func(t *testing.T) {
		applier := &recordingApplier{}
		NewInvalidationListener(applier, "self", nil).Handle(context.Background(), []byte("{not json"))
		assert.Empty(t, applier.applied)
	})
}

func TestBus_BroadcastAppliesOnPeerCache(t *testing.T) {
	ctx := context.Background()
	peerCache := querycache.NewMemoryCache(8)
	key := querycache.Key{Kind: querycache.KindFeed, Cursor: "recent"}
	require.NoError(t, peerCache.Set(ctx, key, []byte("[]"), time.Minute))

	pub := &fakePublisher{}
	require.NoError(t, NewBus(pub, "a", nil).BroadcastInvalidation(ctx, querycache.AfterLikeOrSave("p", "u")))
	data, err := json.Marshal(pub.sent[0].event)
	require.NoError(t, err)

	peer := querycache.NewInvalidator(peerCache, nil, nil, nil)
	NewInvalidationListener(peer, "b", nil).Handle(ctx, data)

	_, found, err := peerCache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

// Runs against a real server when TEST_NATS_URL is set
func TestNATSRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set")
	}

	conn, err := ConnectNATS(NATSConfig{URL: url, Name: "snapgram-test"}, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	applier := &syncApplier{done: make(chan []querycache.Key, 1)}
	sub, err := NewInvalidationListener(applier, "listener", nil).Listen(context.Background(), conn)
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	keys := []querycache.Key{querycache.Prefix(querycache.KindUsers, "")}
	require.NoError(t, NewBus(conn, "sender", nil).BroadcastInvalidation(context.Background(), keys))

	select {
	case got := <-applier.done:
		assert.Equal(t, keys, got)
	case <-time.After(5 * time.Second):
		t.Fatal("invalidation not received")
	}
}

type syncApplier struct {
	done chan []querycache.Key
}

func (s *syncApplier) ApplyRemote(ctx context.Context, prefixes []querycache.Key) {
	s.done <- prefixes
}
