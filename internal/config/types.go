package config

import "time"

// GatewayConfig is the gateway process's own configuration: where it
// listens, how the Registry Store persists, and the Auth Gate's signing
// material and rate-limit knobs. It is distinct from the per-template
// LoadBalancerConfig and Template/Instance records the Registry Store
// manages at runtime — those are registered via the HTTP admin surface or
// loaded from a snapshot, not from this file.
type GatewayConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Backends []BackendEntry `yaml:"backends"`
}

// ServerConfig controls the Gateway Front-End's HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// PersistenceMode selects the Registry Store's PersistLayer implementation.
type PersistenceMode string

const (
	// PersistenceSQL backs the Registry Store and the Auth Gate's user/
	// API-key stores with a database/sql driver (modernc.org/sqlite by
	// default).
	PersistenceSQL PersistenceMode = "sql"
	// PersistenceFile backs them with an atomically-written JSON snapshot
	// on local disk.
	PersistenceFile PersistenceMode = "file"
)

// DatabaseConfig selects and configures relational persistence. DSN is
// overridable by the DATABASE_URL environment input.
type DatabaseConfig struct {
	Mode PersistenceMode `yaml:"mode"`
	DSN  string          `yaml:"dsn"`
}

// SnapshotConfig configures file-persistence mode. Path is overridable by
// the MCP_GATEWAY_SNAPSHOT_PATH environment input. AuthPath is the sibling
// JSON file the Auth Gate's user/API-key store uses in file-persistence
// mode; it is not watched for external changes the way Path is, since only
// the registry snapshot is expected to be edited by an out-of-process job.
type SnapshotConfig struct {
	Path     string `yaml:"path"`
	AuthPath string `yaml:"auth_path"`
}

// AuthConfig configures the Auth Gate's token signing and rate limiting.
// One of JWTSigningKey or a non-default AdminPassword must be configured:
// without a signing key, bearer tokens minted with an ephemerally generated
// one do not survive a restart, so Validate refuses to start the gateway on
// a default-everything configuration unless the operator has at least
// changed the admin password. AdminPassword is read only by that check; no
// user account is created from it.
type AuthConfig struct {
	JWTSigningKey     string        `yaml:"jwt_signing_key"`
	JWTSigningKeyFile string        `yaml:"jwt_signing_key_file"`
	AdminPassword     string        `yaml:"admin_password"`
	AdminPasswordFile string        `yaml:"admin_password_file"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	RateLimitAttempts int           `yaml:"rate_limit_attempts"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
}

// LoggingConfig controls pkg/logging's package-level logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BackendEntry is one template's stdio fallback allow-list entry, the YAML
// shape consumed into a backend.StdioTemplate by BuildBackendDriver.
type BackendEntry struct {
	TemplateName string            `yaml:"template_name"`
	Command      []string          `yaml:"command"`
	WorkingDir   string            `yaml:"working_dir"`
	Env          map[string]string `yaml:"env"`
}
