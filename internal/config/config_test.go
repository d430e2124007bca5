package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	require.Equal(t, BackendSQLite, cfg.Storage.Backend)
	require.Equal(t, 3, cfg.Queue.MaxRetries)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen_addr: "0.0.0.0:9000"
storage:
  backend: redis
  redis_addr: "localhost:6379"
queue:
  max_retries: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	require.Equal(t, BackendRedis, cfg.Storage.Backend)
	require.Equal(t, 5, cfg.Queue.MaxRetries)
	// Untouched fields keep defaults
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: dynamodb
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown storage backend")
}

func TestLoadRejectsRedisWithoutAddr(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: redis
  redis_addr: ""
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
