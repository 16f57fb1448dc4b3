package querycache

import (
	"context"
	"log/slog"

	"Snapgram/internal/metrics"
)

// Notifier tells clients currently displaying a view that it went stale
type Notifier interface {
	NotifyStale(keys []Key)
}

// Broadcaster forwards invalidations to other AppView instances
type Broadcaster interface {
	BroadcastInvalidation(ctx context.Context, keys []Key) error
}

// Invalidator marks views stale after successful mutations: it drops matching
// cache entries, notifies live viewers, and tells peers to do the same.
type Invalidator struct {
	cache    Cache
	notifier Notifier
	peers    Broadcaster
	logger   *slog.Logger
}

// NewInvalidator creates an invalidator. notifier and peers may be nil.
func NewInvalidator(cache Cache, notifier Notifier, peers Broadcaster, logger *slog.Logger) *Invalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invalidator{
		cache:    cache,
		notifier: notifier,
		peers:    peers,
		logger:   logger,
	}
}

// Invalidate applies prefixes locally and broadcasts them to peers
func (i *Invalidator) Invalidate(ctx context.Context, prefixes ...Key) {
	if len(prefixes) == 0 {
		return
	}
	i.apply(ctx, prefixes)

	if i.peers != nil {
		if err := i.peers.BroadcastInvalidation(ctx, prefixes); err != nil {
			i.logger.Warn("failed to broadcast cache invalidation", "error", err, "keys", len(prefixes))
		}
	}
}

// ApplyRemote applies prefixes received from a peer without re-broadcasting
func (i *Invalidator) ApplyRemote(ctx context.Context, prefixes []Key) {
	i.apply(ctx, prefixes)
}

func (i *Invalidator) apply(ctx context.Context, prefixes []Key) {
	for _, p := range prefixes {
		n, err := i.cache.Invalidate(ctx, p)
		if err != nil {
			i.logger.Warn("cache invalidation failed", "error", err, "key", p.String())
			continue
		}
		metrics.CacheInvalidations.WithLabelValues(string(p.Kind)).Add(float64(n))
	}
	if i.notifier != nil {
		i.notifier.NotifyStale(prefixes)
	}
}
