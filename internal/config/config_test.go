package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNamingServerDefaults(t *testing.T) {
	cfg, err := LoadNamingServer("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.ListenPort)
	assert.False(t, cfg.Admin.Enabled)
	assert.False(t, cfg.DangerousAllowExec)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadNamingServerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_port: 9100
access_file: /var/lib/distfs/access.db
admin:
  enabled: true
  port: 9900
logging:
  level: DEBUG
  format: json
`), 0o644))

	cfg, err := LoadNamingServer(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.ListenPort)
	assert.Equal(t, "/var/lib/distfs/access.db", cfg.AccessFilePath)
	assert.True(t, cfg.Admin.Enabled)
	assert.Equal(t, 9900, cfg.Admin.Port)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadNamingServerRejectsInvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_port: 99999\n"), 0o644))

	_, err := LoadNamingServer(path)
	assert.Error(t, err)
}

func TestLoadStorageServerDefaults(t *testing.T) {
	cfg, err := LoadStorageServer("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.NMAddr)
	assert.Equal(t, cfg.NMPort+1, cfg.ClientPort)
}

func TestLoadStorageServerRejectsBadIP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("advertise_ip: not-an-ip\n"), 0o644))

	_, err := LoadStorageServer(path)
	assert.Error(t, err)
}
