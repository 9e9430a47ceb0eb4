package config

import "time"

const (
	defaultListenAddr        = ":8080"
	defaultSnapshotPath      = "./gateway-registry.json"
	defaultAuthStorePath     = "./gateway-auth.json"
	defaultTokenTTL          = 30 * time.Minute
	defaultRateLimitAttempts = 5
	defaultRateLimitWindow   = time.Minute
	defaultLogLevel          = "info"

	// DefaultAdminPassword is the value AuthConfig.AdminPassword carries
	// when an operator has not set one. Validate treats a config still at
	// this value as "no admin password configured," not as a literal
	// credential any user can log in with.
	DefaultAdminPassword = "admin"
)

// DefaultConfig returns the configuration used when no config file exists
// at the resolved path, and as the base a loaded file is merged onto.
func DefaultConfig() GatewayConfig {
	return GatewayConfig{
		Server: ServerConfig{
			ListenAddr: defaultListenAddr,
		},
		Database: DatabaseConfig{
			Mode: PersistenceFile,
		},
		Snapshot: SnapshotConfig{
			Path:     defaultSnapshotPath,
			AuthPath: defaultAuthStorePath,
		},
		Auth: AuthConfig{
			AdminPassword:     DefaultAdminPassword,
			TokenTTL:          defaultTokenTTL,
			RateLimitAttempts: defaultRateLimitAttempts,
			RateLimitWindow:   defaultRateLimitWindow,
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
		},
	}
}
