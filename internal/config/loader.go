package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// Load reads and validates the gateway configuration at path. A missing
// file is not an error: it yields DefaultConfig with environment overrides
// applied, matching a zero-config first run. A present file is merged onto
// DefaultConfig after ${VAR}/${VAR:-default} expansion.
func Load(path string) (*GatewayConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "no config file at %s, using defaults", path)
			ApplyEnvOverrides(&cfg)
			return &cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	expanded := expandEnv(data)
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "loaded configuration from %s", path)

	if err := resolveSecretFiles(&cfg); err != nil {
		return nil, fmt.Errorf("resolve config secrets: %w", err)
	}

	ApplyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides layers the DATABASE_URL and MCP_GATEWAY_SNAPSHOT_PATH
// environment inputs onto cfg, taking precedence over both the config file
// and the defaults.
func ApplyEnvOverrides(cfg *GatewayConfig) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
		if cfg.Database.Mode == "" {
			cfg.Database.Mode = PersistenceSQL
		}
	}
	if path := os.Getenv("MCP_GATEWAY_SNAPSHOT_PATH"); path != "" {
		cfg.Snapshot.Path = path
	}
}

// resolveSecretFiles reads *_file-suffixed config fields from disk: a
// *File field is only consulted when its plaintext counterpart is unset
// (empty for the signing key, still DefaultAdminPassword for the admin
// password), so an explicit in-file value otherwise wins.
func resolveSecretFiles(cfg *GatewayConfig) error {
	if cfg.Auth.JWTSigningKeyFile != "" && cfg.Auth.JWTSigningKey == "" {
		secret, err := readSecretFile(cfg.Auth.JWTSigningKeyFile)
		if err != nil {
			return fmt.Errorf("read jwt signing key from %s: %w", cfg.Auth.JWTSigningKeyFile, err)
		}
		cfg.Auth.JWTSigningKey = secret
		logging.Info("ConfigLoader", "loaded jwt signing key from file")
	}
	if cfg.Auth.AdminPasswordFile != "" && cfg.Auth.AdminPassword == DefaultAdminPassword {
		secret, err := readSecretFile(cfg.Auth.AdminPasswordFile)
		if err != nil {
			return fmt.Errorf("read admin password from %s: %w", cfg.Auth.AdminPasswordFile, err)
		}
		cfg.Auth.AdminPassword = secret
		logging.Info("ConfigLoader", "loaded admin password from file")
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
