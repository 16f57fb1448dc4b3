package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, EventsNone, cfg.EventsBackend)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, time.Hour, cfg.ReconcileInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APPVIEW_PORT", "9000")
	t.Setenv("PUBLIC_BASE_URL", "https://snapgram.app/")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("EVENTS_BACKEND", "nats")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("RECONCILE_INTERVAL_MINUTES", "0")
	t.Setenv("S3_USE_SSL", "true")

	cfg := FromEnv()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://snapgram.app", cfg.PublicBaseURL)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, EventsNATS, cfg.EventsBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.True(t, cfg.S3.UseSSL)
}

func TestFromEnv_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv("CACHE_SIZE", "lots")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-5")

	cfg := FromEnv()
	assert.Equal(t, 4096, cfg.CacheSize)
	assert.Equal(t, 100, cfg.RateLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: ErrMissingJWTSecret},
		{name: "bad cache backend", mutate: func(c *Config) { c.CacheBackend = "memcached" }, wantErr: ErrInvalidBackend},
		{name: "bad events backend", mutate: func(c *Config) { c.EventsBackend = "rabbit" }, wantErr: ErrInvalidBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.JWTSecret = "secret"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nKAFKA_TOPIC=activity-test\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_SECRET")
		_ = os.Unsetenv("KAFKA_TOPIC")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "activity-test", cfg.KafkaTopic)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}
