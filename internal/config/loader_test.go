package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaultsButFailsValidationWithoutSigningKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(path)

	assert.ErrorIs(t, err, ErrMissingSigningKey)
	require.NotNil(t, cfg)
	assert.Equal(t, defaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, PersistenceFile, cfg.Database.Mode)
}

func TestLoadParsesYAMLAndExpandsEnv(t *testing.T) {
	t.Setenv("GATEWAY_ADDR", ":9090")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: "${GATEWAY_ADDR}"
database:
  mode: sql
  dsn: "${GATEWAY_DSN:-file:gateway.db}"
auth:
  jwt_signing_key: "test-signing-key"
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "file:gateway.db", cfg.Database.DSN)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [this is not valid"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoadResolvesSigningKeyFromFile(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "jwt.key")
	require.NoError(t, os.WriteFile(secretPath, []byte("super-secret\n"), 0o600))

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
auth:
  jwt_signing_key_file: `+secretPath+`
`), 0o644))

	cfg, err := Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, "super-secret", cfg.Auth.JWTSigningKey)
}

func TestApplyEnvOverridesPrefersEnvOverConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:from-env.db")
	t.Setenv("MCP_GATEWAY_SNAPSHOT_PATH", "/var/run/snapshot.json")

	cfg := DefaultConfig()
	cfg.Database.DSN = "file:from-config.db"
	cfg.Snapshot.Path = "./local.json"

	ApplyEnvOverrides(&cfg)

	assert.Equal(t, "file:from-env.db", cfg.Database.DSN)
	assert.Equal(t, "/var/run/snapshot.json", cfg.Snapshot.Path)
}
