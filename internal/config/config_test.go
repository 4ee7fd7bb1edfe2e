package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Storage.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "gl_session", cfg.Auth.CookieName)
	assert.Equal(t, 30, cfg.RateLimit.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Seed.DemoUsers)
}

func TestLoadClampsIntervals(t *testing.T) {
	t.Setenv("AI_SYNC_INTERVAL", "1000")
	t.Setenv("N8N_TIMEOUT", "1s")
	t.Setenv("STORAGE_BACKUP_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.AISync.Interval)
	assert.Equal(t, 3*time.Second, cfg.Integrations.N8NTimeout)
	assert.Equal(t, time.Hour, cfg.Backup.Interval)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestProductionDisablesDemoSeed(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEMO_SEED_USERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Seed.DemoUsers)
	assert.True(t, cfg.App.IsProduction())
}

func TestAllowedOriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}
