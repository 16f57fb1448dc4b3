package imageproxy

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidCacheSize is returned when the entry limit is not positive
var ErrInvalidCacheSize = errors.New("cache size must be positive")

// Cache defines the interface for rendered preview caching
type Cache interface {
	// Get retrieves the rendition of assetID for key. Returns the data and whether it was found.
	Get(key string) ([]byte, bool)

	// Set stores a rendition
	Set(key string, data []byte)

	// Len returns the number of cached renditions
	Len() int
}

// MemoryCache is an in-process LRU of rendered previews, bounded by entry count.
type MemoryCache struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryCache creates a cache holding at most size renditions
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries}, nil
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *MemoryCache) Set(key string, data []byte) {
	c.entries.Add(key, data)
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
