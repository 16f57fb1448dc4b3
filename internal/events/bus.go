package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"Snapgram/internal/core/querycache"
	"Snapgram/internal/core/relationships"
	"Snapgram/internal/metrics"
)

// Bus turns successful mutations and invalidations into published events.
// It implements querycache.ActivityRecorder and querycache.Broadcaster.
type Bus struct {
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	origin    string
}

var (
	_ querycache.ActivityRecorder = (*Bus)(nil)
	_ querycache.Broadcaster      = (*Bus)(nil)
)

// NewBus creates a bus publishing as instance origin. An empty origin gets a random id.
func NewBus(publisher Publisher, origin string, logger *slog.Logger) *Bus {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if origin == "" {
		origin = uuid.NewString()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{publisher: publisher, origin: origin, logger: logger, now: time.Now}
}

// Origin returns this instance's id as stamped on every event
func (b *Bus) Origin() string {
	return b.origin
}

func (b *Bus) RelationshipToggled(ctx context.Context, kind relationships.Kind, ownerID, actorID string, outcome relationships.Outcome) {
	b.emit(ctx, &Event{
		Type:    TypeRelationshipToggled,
		Kind:    string(kind),
		Outcome: string(outcome),
		OwnerID: ownerID,
		ActorID: actorID,
	})
}

func (b *Bus) PostChanged(ctx context.Context, change, postID, creatorID string) {
	var t Type
	switch change {
	case querycache.PostCreated:
		t = TypePostCreated
	case querycache.PostUpdated:
		t = TypePostUpdated
	case querycache.PostDeleted:
		t = TypePostDeleted
	default:
		b.logger.Warn("ignoring unknown post change", "change", change, "post_id", postID)
		return
	}
	b.emit(ctx, &Event{Type: t, PostID: postID, UserID: creatorID})
}

func (b *Bus) ProfileUpdated(ctx context.Context, userID string) {
	b.emit(ctx, &Event{Type: TypeProfileUpdated, UserID: userID})
}

// BroadcastInvalidation tells peers which views went stale
func (b *Bus) BroadcastInvalidation(ctx context.Context, keys []querycache.Key) error {
	return b.publish(ctx, &Event{Type: TypeCacheInvalidated, Keys: keys})
}

// emit publishes activity; failures never reach the mutation that caused it
func (b *Bus) emit(ctx context.Context, e *Event) {
	if err := b.publish(ctx, e); err != nil {
		b.logger.Warn("failed to publish event", "type", e.Type, "error", err)
	}
}

func (b *Bus) publish(ctx context.Context, e *Event) error {
	e.ID = uuid.NewString()
	e.Origin = b.origin
	e.OccurredAt = b.now().UTC()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}

	if err := b.publisher.Publish(ctx, e.Type, e.PartitionKey(), data); err != nil {
		metrics.EventsPublished.WithLabelValues(string(e.Type), "error").Inc()
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}
	metrics.EventsPublished.WithLabelValues(string(e.Type), "ok").Inc()
	return nil
}

func (b *Bus) Close() error {
	return b.publisher.Close()
}
