package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"Snapgram/internal/core/querycache"
)

// RemoteApplier applies invalidations received from peers
type RemoteApplier interface {
	ApplyRemote(ctx context.Context, prefixes []querycache.Key)
}

// InvalidationListener applies other instances' cache.invalidated events locally
type InvalidationListener struct {
	applier RemoteApplier
	logger  *slog.Logger
	origin  string
}

// NewInvalidationListener creates a listener that ignores events stamped with origin
func NewInvalidationListener(applier RemoteApplier, origin string, logger *slog.Logger) *InvalidationListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvalidationListener{applier: applier, origin: origin, logger: logger}
}

// Listen subscribes on conn until ctx is done
func (l *InvalidationListener) Listen(ctx context.Context, conn *NATSPublisher) (*nats.Subscription, error) {
	return conn.Subscribe(TypeCacheInvalidated, func(data []byte) {
		l.Handle(ctx, data)
	})
}

// Handle decodes and applies one message
func (l *InvalidationListener) Handle(ctx context.Context, data []byte) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		l.logger.Warn("dropping undecodable invalidation", "error", err)
		return
	}
	if e.Type != TypeCacheInvalidated || e.Origin == l.origin || len(e.Keys) == 0 {
		return
	}
	l.logger.Debug("applying remote invalidation", "origin", e.Origin, "keys", len(e.Keys))
	l.applier.ApplyRemote(ctx, e.Keys)
}
