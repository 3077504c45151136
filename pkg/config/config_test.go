package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STOREFRONT_APP_ENV", "dev")
	t.Setenv("STOREFRONT_APP_PORT", "8080")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageBackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "storefront", cfg.Storage.Namespace)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "storefront", cfg.JWT.Issuer)
	assert.Equal(t, 60, cfg.JWT.ExpirationMinutes)
	assert.False(t, cfg.RemoteSync.Enabled())
	assert.True(t, cfg.App.IsDev())
	assert.False(t, cfg.App.IsProd())
}

func TestLoadRequiresAppEnv(t *testing.T) {
	t.Setenv("STOREFRONT_APP_ENV", "")
	t.Setenv("STOREFRONT_APP_PORT", "8080")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRedisBackendRequiresAddress(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STOREFRONT_STORAGE_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("STOREFRONT_REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageBackendRedis, cfg.Storage.Backend)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STOREFRONT_STORAGE_BACKEND", "filesystem")

	_, err := Load()
	require.Error(t, err)
}

func TestRemoteSyncEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STOREFRONT_REMOTE_SYNC_BASE_URL", "https://backend.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RemoteSync.Enabled())
}
