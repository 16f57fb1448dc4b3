package imageproxy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config validation errors
var (
	// ErrInvalidCacheEntries is returned when CacheEntries is not positive
	ErrInvalidCacheEntries = errors.New("CacheEntries must be positive")
	// ErrInvalidFetchTimeout is returned when FetchTimeout is not positive
	ErrInvalidFetchTimeout = errors.New("FetchTimeout must be positive")
	// ErrInvalidMaxSourceSize is returned when MaxSourceSizeMB is not positive
	ErrInvalidMaxSourceSize = errors.New("MaxSourceSizeMB must be positive")
)

// Config holds the configuration for the preview service.
type Config struct {
	// Enabled determines whether /img/preview is served.
	Enabled bool

	// CacheEntries is the maximum number of rendered previews kept in memory.
	CacheEntries int

	// FetchTimeout is the maximum time allowed for reading a source from the blob store.
	FetchTimeout time.Duration

	// MaxSourceSizeMB is the maximum allowed size for source images in megabytes.
	MaxSourceSizeMB int
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.CacheEntries <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCacheEntries, c.CacheEntries)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidFetchTimeout, c.FetchTimeout)
	}
	if c.MaxSourceSizeMB <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxSourceSize, c.MaxSourceSizeMB)
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		CacheEntries:    512,
		FetchTimeout:    30 * time.Second,
		MaxSourceSizeMB: DefaultMaxSourceSizeMB,
	}
}

// ConfigFromEnv creates a Config from environment variables.
// Uses defaults for any missing environment variables.
//
// Environment variables:
//   - IMAGE_PROXY_ENABLED: "true"/"1" to enable, "false"/"0" to disable (default: true)
//   - IMAGE_PROXY_CACHE_ENTRIES: rendered previews kept in memory (default: 512)
//   - IMAGE_PROXY_FETCH_TIMEOUT_SECONDS: blob store read timeout in seconds (default: 30)
//   - IMAGE_PROXY_MAX_SOURCE_SIZE_MB: max source image size in MB (default: 10)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("IMAGE_PROXY_ENABLED"); v != "" {
		cfg.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("IMAGE_PROXY_CACHE_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheEntries = n
		} else {
			slog.Warn("[IMAGE-PROXY] invalid IMAGE_PROXY_CACHE_ENTRIES value, using default",
				"value", v,
				"default", cfg.CacheEntries,
				"error", err,
			)
		}
	}

	if v := os.Getenv("IMAGE_PROXY_FETCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeout = time.Duration(n) * time.Second
		} else {
			slog.Warn("[IMAGE-PROXY] invalid IMAGE_PROXY_FETCH_TIMEOUT_SECONDS value, using default",
				"value", v,
				"default_seconds", int(cfg.FetchTimeout.Seconds()),
				"error", err,
			)
		}
	}

	if v := os.Getenv("IMAGE_PROXY_MAX_SOURCE_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSourceSizeMB = n
		} else {
			slog.Warn("[IMAGE-PROXY] invalid IMAGE_PROXY_MAX_SOURCE_SIZE_MB value, using default",
				"value", v,
				"default", cfg.MaxSourceSizeMB,
				"error", err,
			)
		}
	}

	return cfg
}
