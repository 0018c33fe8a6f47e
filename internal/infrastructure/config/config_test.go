package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"AUTHORING_APP_NAME":                    os.Getenv("AUTHORING_APP_NAME"),
		"AUTHORING_APP_ENV":                     os.Getenv("AUTHORING_APP_ENV"),
		"AUTHORING_APP_PORT":                    os.Getenv("AUTHORING_APP_PORT"),
		"AUTHORING_LOG_LEVEL":                   os.Getenv("AUTHORING_LOG_LEVEL"),
		"AUTHORING_PROCUREMENT_BASE_URL":        os.Getenv("AUTHORING_PROCUREMENT_BASE_URL"),
		"AUTHORING_PROCUREMENT_TIMEOUT_SECONDS": os.Getenv("AUTHORING_PROCUREMENT_TIMEOUT_SECONDS"),
		"AUTHORING_SESSION_IDLE_TIMEOUT":        os.Getenv("AUTHORING_SESSION_IDLE_TIMEOUT"),
	}
	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()
	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "po-authoring", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "http://localhost:9090/api/v1", cfg.Procurement.BaseURL)
		assert.Equal(t, 30, cfg.Procurement.TimeoutSeconds)
		assert.Equal(t, 4*time.Hour, cfg.Session.IdleTimeout)
		assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
		assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodySize)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUTHORING_APP_PORT", "9999")
		os.Setenv("AUTHORING_LOG_LEVEL", "debug")
		os.Setenv("AUTHORING_PROCUREMENT_BASE_URL", "http://procurement:8000/api/v1")
		os.Setenv("AUTHORING_PROCUREMENT_TIMEOUT_SECONDS", "5")
		os.Setenv("AUTHORING_SESSION_IDLE_TIMEOUT", "30m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9999", cfg.App.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "http://procurement:8000/api/v1", cfg.Procurement.BaseURL)
		assert.Equal(t, 5, cfg.Procurement.TimeoutSeconds)
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	})

	t.Run("production rejects localhost backend", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUTHORING_APP_ENV", "production")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production accepts a real backend", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUTHORING_APP_ENV", "production")
		os.Setenv("AUTHORING_PROCUREMENT_BASE_URL", "https://erp.school.example/api/v1")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}
