package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/auth"
	"github.com/giantswarm/mcp-gateway/internal/model"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
	pkgstrings "github.com/giantswarm/mcp-gateway/pkg/strings"
)

type gatewayHealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	TotalRequests int64   `json:"total_requests"`
}

// handleGatewayHealth is the one unauthenticated endpoint: a load balancer
// or orchestrator liveness probe for the gateway process itself, distinct
// from per-template instance health.
func (s *Server) handleGatewayHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gatewayHealthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		TotalRequests: s.totalRequests.Load(),
	})
}

// templateSummary is the listing shape for GET /gateway/registry: the same
// fields as model.Template, with Description bounded to a single line
// short enough for a terminal table.
type templateSummary struct {
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	LoadBalancer model.LoadBalancerConfig `json:"load_balancer"`
	Instances    []*model.Instance   `json:"instances"`
}

// handleRegistry lists every registered template and its instances.
func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	templates := s.registry.ListTemplates()
	summaries := make([]templateSummary, 0, len(templates))
	for _, tmpl := range templates {
		summaries = append(summaries, templateSummary{
			Name:         tmpl.Name,
			Description:  pkgstrings.TruncateDescription(tmpl.Description, pkgstrings.DefaultDescriptionMaxLen),
			LoadBalancer: tmpl.LoadBalancer,
			Instances:    tmpl.InstanceList(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

type gatewayStatsResponse struct {
	Registry interface{} `json:"registry"`
	Balancer interface{} `json:"balancer,omitempty"`
	Health   interface{} `json:"health_checker,omitempty"`
	Gateway  interface{} `json:"gateway"`
}

// handleStats aggregates the Registry, Load Balancer, and Health Checker's
// own snapshots for operator visibility.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := gatewayStatsResponse{
		Registry: s.registry.GetStats(),
		Gateway:  gatewayHealthResponse{Status: "ok", UptimeSeconds: time.Since(s.startTime).Seconds(), TotalRequests: s.totalRequests.Load()},
	}
	if s.balancer != nil {
		resp.Balancer = s.balancer.Stats()
	}
	if s.health != nil {
		resp.Health = s.health.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleMetrics serves GET /gateway/metrics: Prometheus exposition format
// when a MetricsHandler was wired, falling back to the same plain JSON view
// as handleStats when it wasn't (e.g. in tests that don't care about
// metrics).
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.Handler().ServeHTTP(w, r)
		return
	}
	s.handleStats(w, r)
}

type registerRequest struct {
	TemplateName string         `json:"template_name"`
	Instance     model.Instance `json:"instance"`
}

// handleRegister registers or updates one instance under a template.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.TemplateName == "" {
		writeError(w, http.StatusBadRequest, "template_name is required")
		return
	}

	inst := req.Instance
	if err := s.registry.Register(r.Context(), req.TemplateName, &inst); err != nil {
		logging.Audit(logging.AuditEvent{Action: "instance_register", Outcome: "failure", Target: req.TemplateName, Error: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalFromContext(r.Context())
	logging.Audit(logging.AuditEvent{Action: "instance_register", Outcome: "success", Principal: logging.TruncateID(principal.ID()), Target: fmt.Sprintf("%s/%s", req.TemplateName, inst.ID)})
	writeJSON(w, http.StatusOK, inst)
}

// handleDeregister removes one instance from a template.
func (s *Server) handleDeregister(w http.ResponseWriter, r *http.Request) {
	template := r.PathValue("template")
	instanceID := r.PathValue("id")

	if err := s.registry.Deregister(r.Context(), template, instanceID); err != nil {
		logging.Audit(logging.AuditEvent{Action: "instance_deregister", Outcome: "failure", Target: fmt.Sprintf("%s/%s", template, instanceID), Error: err.Error()})
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	principal := principalFromContext(r.Context())
	logging.Audit(logging.AuditEvent{Action: "instance_deregister", Outcome: "success", Principal: logging.TruncateID(principal.ID()), Target: fmt.Sprintf("%s/%s", template, instanceID)})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deregistered"})
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleIssueToken is POST /gateway/auth/token: username/password exchange
// for a bearer token.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	token, expiresAt, err := s.gate.AuthenticatePassword(r.Context(), req.Username, req.Password)
	if err != nil {
		logging.Audit(logging.AuditEvent{Action: "token_issue", Outcome: "failure", Details: req.Username, Error: err.Error()})
		writeAuthError(w, err)
		return
	}
	logging.Audit(logging.AuditEvent{Action: "token_issue", Outcome: "success", Details: req.Username})
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expiresAt})
}

type createAPIKeyRequest struct {
	UserID    string     `json:"user_id"`
	Scopes    []string   `json:"scopes,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type createAPIKeyResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// handleCreateAPIKey is POST /gateway/auth/apikeys (admin only).
func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	if s.apiKeys == nil {
		writeError(w, http.StatusServiceUnavailable, "api key administration is not configured")
		return
	}
	var req createAPIKeyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	key, hash, err := auth.GenerateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate api key")
		return
	}
	record, err := s.apiKeys.CreateAPIKey(r.Context(), req.UserID, hash, req.Scopes, req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalFromContext(r.Context())
	logging.Audit(logging.AuditEvent{Action: "apikey_create", Outcome: "success", Principal: logging.TruncateID(principal.ID()), Target: req.UserID})
	writeJSON(w, http.StatusCreated, createAPIKeyResponse{ID: record.ID, Key: key})
}

// handleRevokeAPIKey is DELETE /gateway/auth/apikeys/{id} (admin only).
func (s *Server) handleRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	if s.apiKeys == nil {
		writeError(w, http.StatusServiceUnavailable, "api key administration is not configured")
		return
	}
	id := r.PathValue("id")
	if err := s.apiKeys.RevokeAPIKey(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	principal := principalFromContext(r.Context())
	logging.Audit(logging.AuditEvent{Action: "apikey_revoke", Outcome: "success", Principal: logging.TruncateID(principal.ID()), Target: id})
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
