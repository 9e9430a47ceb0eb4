package httpapi

import (
	"net/http"

	"github.com/giantswarm/mcp-gateway/internal/mcpclient"
)

// Handler builds the complete routed, middleware-wrapped HTTP handler for
// the gateway.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /gateway/health", http.HandlerFunc(s.handleGatewayHealth))
	mux.Handle("GET /gateway/metrics", http.HandlerFunc(s.handleMetrics))

	mux.Handle("GET /gateway/registry", s.requireAdmin(http.HandlerFunc(s.handleRegistry)))
	mux.Handle("GET /gateway/stats", s.requireAdmin(http.HandlerFunc(s.handleStats)))
	mux.Handle("POST /gateway/register", s.requireAdmin(http.HandlerFunc(s.handleRegister)))
	mux.Handle("DELETE /gateway/deregister/{template}/{id}", s.requireAdmin(http.HandlerFunc(s.handleDeregister)))

	mux.Handle("POST /gateway/auth/token", http.HandlerFunc(s.handleIssueToken))
	mux.Handle("POST /gateway/auth/apikeys", s.requireAdmin(http.HandlerFunc(s.handleCreateAPIKey)))
	mux.Handle("DELETE /gateway/auth/apikeys/{id}", s.requireAdmin(http.HandlerFunc(s.handleRevokeAPIKey)))

	for path, method := range map[string]string{
		"/mcp/{template}/tools/list":     mcpclient.MethodToolsList,
		"/mcp/{template}/tools/call":     mcpclient.MethodToolsCall,
		"/mcp/{template}/resources/list": mcpclient.MethodResourcesList,
		"/mcp/{template}/resources/read": mcpclient.MethodResourcesRead,
	} {
		handler := s.requireAuth(s.mcpMethodHandler(method))
		mux.Handle("GET "+path, handler)
		mux.Handle("POST "+path, handler)
	}
	mux.Handle("GET /mcp/{template}/health", s.requireAuth(http.HandlerFunc(s.handleTemplateHealth)))

	return s.withCounter(withCORS(mux))
}
