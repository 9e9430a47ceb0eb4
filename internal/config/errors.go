package config

import "errors"

var (
	// ErrInvalidListenAddr is returned when Server.ListenAddr is empty.
	ErrInvalidListenAddr = errors.New("config: server.listen_addr is required")
	// ErrInvalidPersistenceMode is returned when Database.Mode is neither
	// "sql" nor "file".
	ErrInvalidPersistenceMode = errors.New("config: database.mode must be \"sql\" or \"file\"")
	// ErrMissingDSN is returned when Database.Mode is "sql" but no DSN was
	// resolved from the config file or DATABASE_URL.
	ErrMissingDSN = errors.New("config: database.dsn is required in sql mode")
	// ErrMissingSnapshotPath is returned when Database.Mode is "file" but
	// Snapshot.Path is empty.
	ErrMissingSnapshotPath = errors.New("config: snapshot.path is required in file mode")
	// ErrInvalidTokenTTL is returned when Auth.TokenTTL is not positive.
	ErrInvalidTokenTTL = errors.New("config: auth.token_ttl must be positive")
	// ErrInvalidRateLimit is returned when the rate limiter's attempt count
	// or window is not positive.
	ErrInvalidRateLimit = errors.New("config: auth.rate_limit_attempts and auth.rate_limit_window must be positive")
	// ErrDuplicateBackend is returned when two backend entries name the
	// same template.
	ErrDuplicateBackend = errors.New("config: duplicate backends entry for template")
	// ErrMissingSigningKey is returned when no auth.jwt_signing_key was
	// configured and auth.admin_password was left at its shipped default,
	// meaning tokens would be signed with an ephemeral, restart-losing key
	// that no operator explicitly opted into.
	ErrMissingSigningKey = errors.New("config: auth.jwt_signing_key is required unless auth.admin_password is set to a non-default value")
)
