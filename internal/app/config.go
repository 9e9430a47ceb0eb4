package app

// Options are the knobs the CLI launcher collects from flags and
// environment before bootstrapping an Application. Config file content and
// env-var overrides (DATABASE_URL, MCP_GATEWAY_SNAPSHOT_PATH) are resolved
// separately by internal/config.Load; Options carries only what the
// command line itself contributes.
type Options struct {
	// ConfigPath is the resolved config file path (flag --config or
	// MCP_GATEWAY_CONFIG, defaulting to "./gateway.yaml").
	ConfigPath string
	// ListenAddrOverride, when non-empty, wins over the config file's
	// server.listen_addr (flag --addr).
	ListenAddrOverride string
	// Debug raises the logger to debug level regardless of the config
	// file's logging.level.
	Debug bool
}

// DefaultConfigPath is used when neither --config nor MCP_GATEWAY_CONFIG
// names one.
const DefaultConfigPath = "./gateway.yaml"
