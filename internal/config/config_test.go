package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "travelmate.db", cfg.DatabasePath)
	assert.Equal(t, "sequential", cfg.DefaultPhase)
	assert.Equal(t, 6, cfg.ContextWindow)
	assert.Equal(t, 15*time.Second, cfg.VendorTimeout)
	assert.Equal(t, 30*time.Minute, cfg.PendingTTL)
	assert.Equal(t, 10, cfg.PendingMaxTurns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/trips.db")
	t.Setenv("DEFAULT_PHASE", " GroupChat ")
	t.Setenv("CONTEXT_WINDOW", "12")
	t.Setenv("VENDOR_TIMEOUT", "10s")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/trips.db", cfg.DatabasePath)
	assert.Equal(t, "groupchat", cfg.DefaultPhase)
	assert.Equal(t, 12, cfg.ContextWindow)
	assert.Equal(t, 10*time.Second, cfg.VendorTimeout)
	assert.Equal(t, 0.7, cfg.LLMTemperature)
	assert.True(t, cfg.RedisTLS)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW", "lots")
	t.Setenv("VENDOR_TIMEOUT", "soon")
	t.Setenv("LLM_TEMPERATURE", "warm")

	cfg := Load()

	assert.Equal(t, 6, cfg.ContextWindow)
	assert.Equal(t, 15*time.Second, cfg.VendorTimeout)
	assert.Equal(t, 0.3, cfg.LLMTemperature)
}
