package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Test basic config loading with defaults
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify app defaults
		assert.Equal(t, 3000, cfg.App.Port)
		assert.Equal(t, "production", cfg.App.NodeEnv)
		assert.Equal(t, "50mb", cfg.App.MaxUploadSize)
		assert.Equal(t, 900000, cfg.App.RateLimitWindowMS)
		assert.Equal(t, 100, cfg.App.RateLimitMax)
		assert.Equal(t, "http://localhost:3000", cfg.App.CORSOrigin)

		// Verify logging defaults
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	// Test environment overrides
	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("ATLASMIGRATE_APP_PORT", "8080")
		t.Setenv("ATLASMIGRATE_APP_CORS_ORIGIN", "https://app.example.com")
		t.Setenv("ATLASMIGRATE_LOGGING_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.App.Port)
		assert.Equal(t, "https://app.example.com", cfg.App.CORSOrigin)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("InvalidPort", func(t *testing.T) {
		t.Setenv("ATLASMIGRATE_APP_PORT", "70000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.port")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		t.Setenv("ATLASMIGRATE_LOGGING_LEVEL", "loud")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.level")
	})
}
