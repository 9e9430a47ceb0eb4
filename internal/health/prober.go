package health

import "context"

// Prober performs the actual liveness probes against a backend instance.
// internal/mcpclient supplies the production implementation; tests supply
// a stub.
type Prober interface {
	// ProbeHTTP runs the three-tier HTTP probe against endpoint (MCP
	// handshake, then basic GET, then TCP connect) and returns nil iff any
	// tier succeeds within the given context's deadline.
	ProbeHTTP(ctx context.Context, endpoint string) error
	// ProbeStdio spawns command with workingDir/env, performs an MCP init
	// handshake over stdin/stdout, and kills the process before returning.
	ProbeStdio(ctx context.Context, command []string, workingDir string, env map[string]string) error
}
