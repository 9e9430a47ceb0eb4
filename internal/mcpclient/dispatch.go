package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	MethodToolsList      = "tools/list"
	MethodToolsCall      = "tools/call"
	MethodResourcesList  = "resources/list"
	MethodResourcesRead  = "resources/read"
)

var protocolVersion = "2024-11-05"

// implementationInfo identifies the gateway to every backend it dials.
var implementationInfo = mcp.Implementation{Name: "mcp-gateway", Version: "1.0.0"}

// initializeSession performs the MCP handshake on an already-constructed
// mcp-go client. Callers own closing c on both success and failure paths.
func initializeSession(ctx context.Context, c client.MCPClient) error {
	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo:      implementationInfo,
			Capabilities:    mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		return &TransportError{Reason: "mcp initialize handshake", Err: err}
	}
	return nil
}

// dispatch forwards method/params to an already-initialized mcp-go client
// and returns the raw MCP result as an opaque JSON document, matching
// the "return the raw MCP result as an opaque JSON
// document" contract.
func dispatch(ctx context.Context, c client.MCPClient, method string, params map[string]interface{}) (json.RawMessage, error) {
	switch method {
	case MethodToolsList:
		result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return nil, classifyCallError("list tools", err)
		}
		return marshalResult(result)

	case MethodToolsCall:
		name, _ := params["name"].(string)
		arguments, _ := params["arguments"].(map[string]interface{})
		result, err := c.CallTool(ctx, mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: arguments},
		})
		if err != nil {
			return nil, classifyCallError("call tool "+name, err)
		}
		return marshalResult(result)

	case MethodResourcesList:
		result, err := c.ListResources(ctx, mcp.ListResourcesRequest{})
		if err != nil {
			return nil, classifyCallError("list resources", err)
		}
		return marshalResult(result)

	case MethodResourcesRead:
		uri, _ := params["uri"].(string)
		result, err := c.ReadResource(ctx, mcp.ReadResourceRequest{
			Params: struct {
				URI       string         `json:"uri"`
				Arguments map[string]any `json:"arguments,omitempty"`
			}{URI: uri},
		})
		if err != nil {
			return nil, classifyCallError("read resource "+uri, err)
		}
		return marshalResult(result)

	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unsupported MCP method %q", method)}
	}
}

func marshalResult(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &ProtocolError{Reason: "marshal MCP result", Err: err}
	}
	return data, nil
}

// classifyCallError treats any error returned mid-call as a TransportError:
// by the time a session is initialized, a failing call almost always means
// the connection dropped or the backend process died, both retriable.
// Malformed-response cases surface via marshalResult's ProtocolError.
func classifyCallError(op string, err error) error {
	return &TransportError{Reason: op, Err: err}
}
