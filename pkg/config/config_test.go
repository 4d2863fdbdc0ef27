package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "downloads", cfg.Download.BaseDirectory)
	assert.Equal(t, "both", cfg.Download.MediaType)
	assert.Equal(t, 500, cfg.Download.Limit)
	assert.Equal(t, "oldest", cfg.Download.Order)
	assert.Equal(t, 25, cfg.Download.FlushEvery)
	assert.Equal(t, ".bin", cfg.Download.DefaultExtension)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.HasCredentials())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TGMEDIA_API_ID", "12345")
	t.Setenv("TGMEDIA_API_HASH", "0123456789abcdef")
	t.Setenv("TGMEDIA_OUTPUT_DIR", "/tmp/tg-downloads")
	t.Setenv("TGMEDIA_MEDIA_TYPE", "Photos")
	t.Setenv("TGMEDIA_ORDER", "newest")
	t.Setenv("TGMEDIA_LIMIT", "1000")
	t.Setenv("TGMEDIA_FLUSH_EVERY", "0")
	t.Setenv("TGMEDIA_NOTIFICATIONS_ENABLED", "false")
	t.Setenv("TGMEDIA_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 12345, cfg.Telegram.APIID)
	assert.Equal(t, "0123456789abcdef", cfg.Telegram.APIHash)
	assert.Equal(t, "/tmp/tg-downloads", cfg.Download.BaseDirectory)
	assert.Equal(t, "photos", cfg.Download.MediaType)
	assert.Equal(t, "newest", cfg.Download.Order)
	assert.Equal(t, 1000, cfg.Download.Limit)
	assert.Equal(t, 0, cfg.Download.FlushEvery)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadFromEnvInvalidAPIID(t *testing.T) {
	t.Setenv("TGMEDIA_API_ID", "not-a-number")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TGMEDIA_API_ID")
	assert.Equal(t, 0, cfg.Telegram.APIID)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
telegram:
  api_id: 777
  api_hash: "hash"
download:
  base_directory: "/data/tg"
  media_type: "videos"
  limit: 50
  order: "newest"
logging:
  level: "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 777, cfg.Telegram.APIID)
	assert.Equal(t, "hash", cfg.Telegram.APIHash)
	assert.Equal(t, "/data/tg", cfg.Download.BaseDirectory)
	assert.Equal(t, "videos", cfg.Download.MediaType)
	assert.Equal(t, 50, cfg.Download.Limit)
	assert.Equal(t, "newest", cfg.Download.Order)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// untouched values keep their defaults
	assert.Equal(t, 25, cfg.Download.FlushEvery)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unclosed"), 0644))

	cfg := DefaultConfig()
	err := cfg.LoadFromFile(path)
	assert.Error(t, err)
}

func TestLegacyCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LegacyConfigFile)

	require.NoError(t, SaveLegacy(path, 4242, "legacyhash"))

	t.Run("fills missing credentials", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadLegacy(path))
		assert.Equal(t, 4242, cfg.Telegram.APIID)
		assert.Equal(t, "legacyhash", cfg.Telegram.APIHash)
	})

	t.Run("does not override configured credentials", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Telegram.APIID = 1
		cfg.Telegram.APIHash = "configured"
		require.NoError(t, cfg.LoadLegacy(path))
		assert.Equal(t, 1, cfg.Telegram.APIID)
		assert.Equal(t, "configured", cfg.Telegram.APIHash)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, cfg.LoadLegacy(filepath.Join(dir, "absent.json")))
		assert.False(t, cfg.HasCredentials())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad media type", func(c *Config) { c.Download.MediaType = "audio" }, "invalid media type"},
		{"bad order", func(c *Config) { c.Download.Order = "random" }, "invalid order"},
		{"zero limit", func(c *Config) { c.Download.Limit = 0 }, "limit must be positive"},
		{"negative flush", func(c *Config) { c.Download.FlushEvery = -1 }, "flush_every"},
		{"extension without dot", func(c *Config) { c.Download.DefaultExtension = "bin" }, "start with a dot"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, "requests per second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"api-id":        99,
		"api-hash":      "flaghash",
		"output":        "/out",
		"type":          "VIDEOS",
		"order":         "newest",
		"limit":         10,
		"flush-every":   5,
		"notifications": false,
		"log-level":     "error",
	})

	assert.Equal(t, 99, cfg.Telegram.APIID)
	assert.Equal(t, "flaghash", cfg.Telegram.APIHash)
	assert.Equal(t, "/out", cfg.Download.BaseDirectory)
	assert.Equal(t, "videos", cfg.Download.MediaType)
	assert.Equal(t, "newest", cfg.Download.Order)
	assert.Equal(t, 10, cfg.Download.Limit)
	assert.Equal(t, 5, cfg.Download.FlushEvery)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("TGMEDIA_LIMIT", "200")

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download:\n  limit: 100\n  order: newest\n"), 0644))

	cfg, err := Load(path, map[string]interface{}{"order": "oldest"})
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Download.Limit, "env overrides file")
	assert.Equal(t, "oldest", cfg.Download.Order, "flags override file")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Telegram.APIID = 5
	cfg.Download.Limit = 42
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 5, loaded.Telegram.APIID)
	assert.Equal(t, 42, loaded.Download.Limit)
}

func TestSessionPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Telegram.SessionFile = "/explicit/session.json"
	path, err := cfg.SessionPath()
	require.NoError(t, err)
	assert.Equal(t, "/explicit/session.json", path)

	cfg.Telegram.SessionFile = ""
	path, err = cfg.SessionPath()
	require.NoError(t, err)
	assert.Equal(t, "session.json", filepath.Base(path))
}
