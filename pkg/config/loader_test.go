package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirWithConfig(t *testing.T, yaml string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), []byte(yaml), 0o644))
	t.Chdir(dir)

	t.Setenv("APP_ENV", "test")
	t.Setenv("BOT_TOKEN", "123:token")
	t.Setenv("WEATHER_API_KEY", "owm-key")
	t.Setenv("ADMIN_IDS", "")
}

func TestLoad(t *testing.T) {
	chdirWithConfig(t, `
admins: [100, 200]
storage:
  path: data/test.json
rate_limit:
  per_user:
    limit: 5
    window: 30s
`)

	cfg, v, err := Load()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "test", cfg.AppEnv)
	assert.Equal(t, "123:token", cfg.Bot.Token)
	assert.Equal(t, "polling", cfg.Bot.Mode)
	assert.Equal(t, "owm-key", cfg.Weather.APIKey)
	assert.Equal(t, "data/test.json", cfg.Storage.Path)
	assert.Equal(t, []int64{100, 200}, cfg.Admins)
	assert.Equal(t, 5, cfg.RateLimit.PerUser.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.PerUser.Window)
	assert.Equal(t, "ru", cfg.Locales.DefaultLanguage)
}

func TestLoad_AdminsFromEnv(t *testing.T) {
	chdirWithConfig(t, "")
	t.Setenv("ADMIN_IDS", "42, 7")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{42, 7}, cfg.Admins)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(43))
}

func TestLoad_MalformedAdminsEnv(t *testing.T) {
	chdirWithConfig(t, "")
	t.Setenv("ADMIN_IDS", "42,abc")

	_, _, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingToken(t *testing.T) {
	chdirWithConfig(t, "")
	t.Setenv("BOT_TOKEN", "")

	_, _, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingConfigFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("APP_ENV", "production")
	t.Setenv("BOT_TOKEN", "123:token")
	t.Setenv("WEATHER_API_KEY", "owm-key")
	t.Setenv("ADMIN_IDS", "")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "locales", cfg.Locales.Dir)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
}

func TestLoad_InvalidMode(t *testing.T) {
	chdirWithConfig(t, "bot:\n  mode: carrier_pigeon\n")

	_, _, err := Load()
	assert.Error(t, err)
}
