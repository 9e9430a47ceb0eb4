package httpapi

import (
	"context"
	"net/http"

	"github.com/giantswarm/mcp-gateway/internal/auth"
	"github.com/giantswarm/mcp-gateway/internal/model"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

type principalKey struct{}

func principalFromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalKey{}).(*model.Principal)
	return p
}

// withCORS sets permissive CORS headers on every response and short-circuits
// preflight OPTIONS requests. The gateway is an API surface meant to be
// called from arbitrary MCP clients, not a browser session with cookies, so
// a wildcard origin carries no credential-leak risk.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withCounter increments the gateway's total-request counter for every
// request that reaches the mux, including ones later rejected by auth.
func (s *Server) withCounter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.totalRequests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the Authorization header (or, if absent, the
// X-API-Key header) into a Principal and stores it in the request context,
// rejecting the request with 401 on failure.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := r.Header.Get("Authorization")
		if credential == "" {
			credential = r.Header.Get("X-API-Key")
		}
		principal, err := s.gate.Authenticate(r.Context(), credential, r.RemoteAddr)
		if err != nil {
			logging.Warn("GatewayFrontEnd", "authentication failed from %s: %v", r.RemoteAddr, err)
			writeAuthError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin wraps requireAuth and additionally rejects non-admin
// principals with 403.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		if err := auth.RequireAdmin(principal); err != nil {
			writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
