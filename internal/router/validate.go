package router

import "github.com/giantswarm/mcp-gateway/internal/mcpclient"

// validateParams rejects a request before any dispatch attempt when a
// method-specific required field is missing from params, per
// the edge cases.
func validateParams(method string, params map[string]interface{}) error {
	switch method {
	case mcpclient.MethodToolsCall:
		return requireNonEmptyString(params, "name", "tools/call requires a non-empty \"name\"")
	case mcpclient.MethodResourcesRead:
		return requireNonEmptyString(params, "uri", "resources/read requires a non-empty \"uri\"")
	}
	return nil
}

func requireNonEmptyString(params map[string]interface{}, key, message string) error {
	raw, ok := params[key]
	if !ok {
		return newError(KindBadRequest, message, nil)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return newError(KindBadRequest, message, nil)
	}
	return nil
}
