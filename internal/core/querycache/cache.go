package querycache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"Snapgram/internal/metrics"
)

// Cache stores serialized view results.
// It is never authoritative: a miss or error always falls back to the store.
type Cache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	// Generation returns a counter that moves on every Invalidate of kind
	Generation(ctx context.Context, kind Kind) (uint64, error)
	// SetIfGeneration stores value only while key's kind is still at gen.
	// It reports false when an invalidation ran since gen was read.
	SetIfGeneration(ctx context.Context, key Key, value []byte, ttl time.Duration, gen uint64) (bool, error)
	// Invalidate drops every entry under prefix and returns how many were dropped
	Invalidate(ctx context.Context, prefix Key) (int, error)
}

type memoryEntry struct {
	expiresAt time.Time
	key       Key
	value     []byte
}

// MemoryCache is an in-process LRU. Entries carry their own TTL; the LRU's
// global TTL only bounds how long anything can linger.
type MemoryCache struct {
	entries     *expirable.LRU[string, memoryEntry]
	generations map[Kind]uint64
	now         func() time.Time
	mu          sync.Mutex
}

// NewMemoryCache creates a cache of at most size entries
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{
		entries:     expirable.NewLRU[string, memoryEntry](size, nil, LongTTL),
		generations: make(map[Kind]uint64),
		now:         time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	k := key.String()
	entry, ok := c.entries.Get(k)
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.entries.Remove(k)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	c.entries.Add(key.String(), memoryEntry{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

func (c *MemoryCache) Generation(ctx context.Context, kind Kind) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[kind], nil
}

func (c *MemoryCache) SetIfGeneration(ctx context.Context, key Key, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[key.Kind] != gen {
		return false, nil
	}
	c.entries.Add(key.String(), memoryEntry{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
	return true, nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, prefix Key) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[prefix.Kind]++

	removed := 0
	for _, k := range c.entries.Keys() {
		entry, ok := c.entries.Peek(k)
		if !ok || !entry.key.Matches(prefix) {
			continue
		}
		if c.entries.Remove(k) {
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Fetch is a read-through lookup: return the cached value for key if present,
// otherwise call load, store its result for ttl and return it.
// A result is only stored if no invalidation of key's kind ran while it loaded.
// Cache failures are logged and fall through to load.
func Fetch[T any](ctx context.Context, c Cache, key Key, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	raw, found, err := c.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues(string(key.Kind), "error").Inc()
		slog.Warn("query cache read failed", "key", key.String(), "error", err)
	case found:
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.CacheRequests.WithLabelValues(string(key.Kind), "hit").Inc()
			return cached, nil
		}
		slog.Warn("query cache entry undecodable, reloading", "key", key.String())
	default:
		metrics.CacheRequests.WithLabelValues(string(key.Kind), "miss").Inc()
	}

	gen, genErr := c.Generation(ctx, key.Kind)
	if genErr != nil {
		slog.Warn("query cache generation read failed", "key", key.String(), "error", genErr)
	}

	value, err := load(ctx)
	if err != nil || genErr != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		slog.Warn("query cache encode failed", "key", key.String(), "error", err)
		return value, nil
	}
	stored, err := c.SetIfGeneration(ctx, key, encoded, ttl, gen)
	switch {
	case err != nil:
		slog.Warn("query cache write failed", "key", key.String(), "error", err)
	case !stored:
		slog.Debug("query cache skipped result invalidated during load", "key", key.String())
	}
	return value, nil
}
