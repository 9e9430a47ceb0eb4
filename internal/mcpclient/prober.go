package mcpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/client"

	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// HealthProber implements health.Prober on top of this package's
// dispatch/spawn primitives, so the Health Checker never talks to
// mark3labs/mcp-go directly.
type HealthProber struct {
	httpClient *http.Client
}

// NewHealthProber constructs a HealthProber with an HTTP client tuned for
// short liveness checks rather than normal dispatch traffic.
func NewHealthProber() *HealthProber {
	return &HealthProber{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// ProbeHTTP runs a three-tier probe: an MCP handshake, then a basic GET,
// then a raw TCP connect. The first success wins.
func (p *HealthProber) ProbeHTTP(ctx context.Context, endpoint string) error {
	if err := p.probeMCPHandshake(ctx, endpoint); err == nil {
		return nil
	}
	if err := p.probeBasicHTTP(ctx, endpoint); err == nil {
		return nil
	}
	return p.probeConnectivity(ctx, endpoint)
}

func (p *HealthProber) probeMCPHandshake(ctx context.Context, endpoint string) error {
	c, err := client.NewStreamableHttpClient(endpoint)
	if err != nil {
		return err
	}
	defer c.Close()
	return initializeSession(ctx, c)
}

func (p *HealthProber) probeBasicHTTP(ctx context.Context, endpoint string) error {
	for _, target := range []string{endpoint, endpoint + "/health"} {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			continue
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
	}
	return fmt.Errorf("no 2xx response from %s or %s/health", endpoint, endpoint)
}

func (p *HealthProber) probeConnectivity(ctx context.Context, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint %s: %w", endpoint, err)
	}
	host := u.Host
	if host == "" {
		return fmt.Errorf("endpoint %s has no host", endpoint)
	}
	if u.Port() == "" {
		if u.Scheme == "https" {
			host = net.JoinHostPort(u.Hostname(), "443")
		} else {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("tcp connect to %s: %w", host, err)
	}
	return conn.Close()
}

// ProbeStdio spawns command, performs an MCP init handshake, and kills the
// process before returning.
func (p *HealthProber) ProbeStdio(ctx context.Context, command []string, workingDir string, env map[string]string) error {
	c, err := spawnStdioClient(ctx, command, workingDir, env)
	if err != nil {
		return err
	}
	if closeErr := c.Close(); closeErr != nil {
		logging.Debug("HealthProber", "error closing probed stdio process: %v", closeErr)
	}
	return nil
}
