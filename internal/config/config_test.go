package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CIVIC_CONFIG_PATH", "CIVIC_SERVER_HOST", "CIVIC_SERVER_PORT", "PING_MESSAGE",
	"CIVIC_TRANSPORT", "CIVIC_STORE_DRIVER", "CIVIC_STORE_FILE", "CIVIC_DB_PATH",
	"CIVIC_MEDIA_DIR", "CIVIC_LIFECYCLE_ENABLED", "CIVIC_LIFECYCLE_CANCEL_ON_EDIT",
	"CIVIC_REDIS_URL", "CIVIC_RATE_LIMIT", "CIVIC_LOG_LEVEL", "CIVIC_LOG_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "ping", cfg.Server.PingMessage)
	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.True(t, cfg.Lifecycle.Enabled)
	require.False(t, cfg.Lifecycle.CancelOnStatusEdit)
	require.Equal(t, 1200*time.Millisecond, cfg.Lifecycle.AcknowledgeAfter)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  ping_message: hello
store:
  driver: file
  file_path: /tmp/reports.json
lifecycle:
  acknowledge_after: 2s
  cancel_on_status_edit: true
ratelimit:
  limit: 5
  window: 30s
`), 0o644))

	t.Setenv("CIVIC_CONFIG_PATH", path)
	t.Setenv("CIVIC_SERVER_PORT", "9100")
	t.Setenv("PING_MESSAGE", "pong")
	t.Setenv("CIVIC_LIFECYCLE_ENABLED", "false")
	t.Setenv("CIVIC_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "pong", cfg.Server.PingMessage)
	require.Equal(t, "file", cfg.Store.Driver)
	require.Equal(t, "/tmp/reports.json", cfg.Store.FilePath)
	require.Equal(t, 2*time.Second, cfg.Lifecycle.AcknowledgeAfter)
	require.Equal(t, 4200*time.Millisecond, cfg.Lifecycle.ProgressAfter)
	require.True(t, cfg.Lifecycle.CancelOnStatusEdit)
	require.False(t, cfg.Lifecycle.Enabled)
	require.Equal(t, 5, cfg.RateLimit.Limit)
	require.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	require.Equal(t, "redis://localhost:6379/0", cfg.RateLimit.RedisURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"CIVIC_SERVER_PORT":       "eighty",
		"CIVIC_LIFECYCLE_ENABLED": "maybe",
		"CIVIC_RATE_LIMIT":        "lots",
		"CIVIC_TRANSPORT":         "carrier-pigeon",
		"CIVIC_STORE_DRIVER":      "postgres",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CIVIC_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_LifecycleDelaysMustIncrease(t *testing.T) {
	cases := map[string]string{
		"progress equals acknowledge": "acknowledge_after: 2s\n  progress_after: 2s",
		"progress before acknowledge": "acknowledge_after: 5s\n  progress_after: 3s",
		"resolve before progress":     "progress_after: 5s\n  resolve_after: 4s",
		"negative acknowledge":        "acknowledge_after: -1s",
	}
	for name, lifecycle := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("lifecycle:\n  "+lifecycle+"\n"), 0o644))
			t.Setenv("CIVIC_CONFIG_PATH", path)

			_, err := Load()
			require.ErrorContains(t, err, "lifecycle")
		})
	}
}

func TestValidate_LifecycleDelays(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Lifecycle.ProgressAfter = cfg.Lifecycle.AcknowledgeAfter
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Lifecycle.ResolveAfter = cfg.Lifecycle.AcknowledgeAfter
	require.Error(t, cfg.Validate())
}
