package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.API.Host)
	assert.Equal(t, 3000, cfg.API.Port)
	assert.False(t, cfg.API.AuthEnabled)
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  port: 9000
api:
  host: tasks.example.com
  port: 4000
  auth_enabled: true
  auth_token: secret
database:
  driver: postgres
  dsn: "host=db user=odoo dbname=mqtt"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "tasks.example.com", cfg.API.Host)
	assert.Equal(t, 4000, cfg.API.Port)
	assert.True(t, cfg.API.AuthEnabled)
	assert.Equal(t, "secret", cfg.API.AuthToken)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	// Unset values still fall back to defaults.
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
}
