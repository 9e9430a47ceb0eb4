package mcpclient

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/client"

	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// DispatchHTTP opens a fresh streamable-HTTP session to endpoint, performs
// the MCP handshake, issues one request, and tears the session down.
// Pooling HTTP sessions is permitted but not required; the gateway opts
// for the simpler no-pooling path since HTTP round trips are cheap
// relative to stdio process spawns.
func DispatchHTTP(ctx context.Context, endpoint, method string, params map[string]interface{}) (json.RawMessage, error) {
	c, err := client.NewStreamableHttpClient(endpoint)
	if err != nil {
		return nil, &TransportError{Reason: "create http client for " + endpoint, Err: err}
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			logging.Debug("MCPClient", "error closing http client for %s: %v", endpoint, closeErr)
		}
	}()

	if err := initializeSession(ctx, c); err != nil {
		return nil, err
	}

	return dispatch(ctx, c, method, params)
}
