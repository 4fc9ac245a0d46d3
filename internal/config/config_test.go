package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8083, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, 25, cfg.Postgres.MaxOpenConns)
	require.Equal(t, 5, cfg.Postgres.MaxIdleConns)
	require.Equal(t, "audit_log.chat", cfg.AMQP.RoutingKey)
	require.Equal(t, "chat-media", cfg.MinIO.Bucket)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9999
  mode: debug
jwt:
  secret: file-secret
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.Equal(t, "file-secret", cfg.JWT.Secret)
	require.Equal(t, "console", cfg.Logging.Format)
	// untouched sections keep their defaults
	require.Equal(t, "cohort.events", cfg.AMQP.Exchange)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8083, cfg.Server.Port)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
