package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v1")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "storefront-gateway", cfg.Service.Name)
	assert.Equal(t, "3000", cfg.Service.Port)
	assert.Equal(t, "/api/v1", cfg.Backend.CookiePath)
	assert.Equal(t, 30*time.Second, cfg.GetBackendTimeoutDuration())
	assert.Equal(t, 15*time.Second, cfg.GetShutdownTimeoutDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v1")
	t.Setenv("PORT", "8080")
	t.Setenv("API_COOKIE_PATH", "/v2")
	t.Setenv("API_TIMEOUT_SECONDS", "5")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.5")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "/v2", cfg.Backend.CookiePath)
	assert.Equal(t, 5*time.Second, cfg.GetBackendTimeoutDuration())
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.5, cfg.Tracing.SampleRate)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Setenv("API_BASE_URL", "https://api.example.com/api/v1")
		return Load()
	}

	t.Run("missing base url", func(t *testing.T) {
		cfg := base()
		cfg.Backend.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("malformed base url", func(t *testing.T) {
		cfg := base()
		cfg.Backend.BaseURL = "not a url"
		assert.Error(t, cfg.Validate())
	})

	t.Run("sample rate out of range", func(t *testing.T) {
		cfg := base()
		cfg.Tracing.SampleRate = 1.5
		assert.Error(t, cfg.Validate())
	})
}

func TestEnvFallbacksOnGarbage(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v1")
	t.Setenv("API_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()
	assert.Equal(t, 30, cfg.Backend.TimeoutSeconds)
	assert.False(t, cfg.Tracing.Enabled)
}
