package querycache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares cached views between AppView instances.
type RedisCache struct {
	client    *redis.Client
	scanCount int64
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, scanCount: 200}
}

// OpenRedis connects to addr and verifies the connection
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key.String(), value, ttl).Err()
}

// generationKey lives outside the view namespace so prefix scans never delete it
func generationKey(kind Kind) string {
	return "snapgram:gen:" + string(kind)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd stringGetter, kind Kind) (uint64, error) {
	gen, err := cmd.Get(ctx, generationKey(kind)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Generation(ctx context.Context, kind Kind) (uint64, error) {
	return readGeneration(ctx, c.client, kind)
}

var errGenerationMoved = errors.New("generation moved")

// SetIfGeneration watches the kind's generation key, so an INCR from a
// concurrent Invalidate aborts the write.
func (c *RedisCache) SetIfGeneration(ctx context.Context, key Key, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, key.Kind)
		if err != nil {
			return err
		}
		if current != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key.String(), value, ttl)
			return nil
		})
		return err
	}, generationKey(key.Kind))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, err
	}
}

// Invalidate deletes every key matching prefix using SCAN so large keyspaces
// never block the server.
func (c *RedisCache) Invalidate(ctx context.Context, prefix Key) (int, error) {
	if err := c.client.Incr(ctx, generationKey(prefix.Kind)).Err(); err != nil {
		return 0, fmt.Errorf("failed to bump %s generation: %w", prefix.Kind, err)
	}
	if prefix.ID != "" && prefix.Cursor != "" {
		n, err := c.client.Del(ctx, prefix.String()).Result()
		return int(n), err
	}

	removed := 0
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix.pattern(), c.scanCount).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan %s: %w", prefix.pattern(), err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete cached views: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
