package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.APIBaseURL)
	assert.NotEmpty(t, cfg.ServerPort)
	assert.Greater(t, cfg.CacheTTL, time.Duration(0))
	assert.Greater(t, cfg.HTTPTimeout, time.Duration(0))
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://inventory.internal:5000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CACHE_TTL_SECONDS", "45")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "http://inventory.internal:5000", cfg.APIBaseURL)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 45*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresInvalidDurations(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "soon")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-5")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
