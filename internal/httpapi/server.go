package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/health"
	"github.com/giantswarm/mcp-gateway/internal/loadbalancer"
	"github.com/giantswarm/mcp-gateway/internal/model"
	"github.com/giantswarm/mcp-gateway/internal/registry"
)

// MetricsHandler is the slice of *metrics.Metrics the front end needs: the
// Prometheus exposition handler mounted at GET /gateway/metrics.
type MetricsHandler interface {
	Handler() http.Handler
}

// Router is the slice of *router.Router the front end depends on.
type Router interface {
	Route(ctx context.Context, templateName, method string, params map[string]interface{}, principal *model.Principal) ([]byte, error)
}

// Gate is the slice of *auth.Gate the front end depends on.
type Gate interface {
	Authenticate(ctx context.Context, headerValue, clientKey string) (*model.Principal, error)
	AuthenticatePassword(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error)
}

// RegistryAdmin is the slice of *registry.Store the admin endpoints need.
type RegistryAdmin interface {
	ListTemplates() []*model.Template
	GetTemplate(name string) (*model.Template, error)
	ListAllInstances() []*model.Instance
	Register(ctx context.Context, templateName string, inst *model.Instance) error
	Deregister(ctx context.Context, templateName, instanceID string) error
	GetStats() registry.RegistryStats
}

// BalancerStats is the slice of *loadbalancer.Balancer the metrics/stats
// endpoints read.
type BalancerStats interface {
	Stats() loadbalancer.Stats
}

// HealthStats is the slice of *health.Checker the metrics/stats endpoints
// read.
type HealthStats interface {
	Snapshot() health.Stats
}

// APIKeyAdmin is the slice of the auth store the admin API-key endpoints
// need beyond what Gate already exposes.
type APIKeyAdmin interface {
	CreateAPIKey(ctx context.Context, userID, keyHash string, scopes []string, expiresAt *time.Time) (*model.APIKey, error)
	RevokeAPIKey(ctx context.Context, keyID string) error
}

// Server is the Gateway Front-End: a thin net/http adapter over the
// router, auth gate, registry, load balancer, and health checker.
type Server struct {
	router   Router
	gate     Gate
	registry RegistryAdmin
	balancer BalancerStats
	health   HealthStats
	apiKeys  APIKeyAdmin
	metrics  MetricsHandler

	startTime     time.Time
	totalRequests atomic.Int64
}

// Config bundles the collaborators a Server is wired with. Optional fields
// (Balancer, Health, APIKeys, Metrics) may be left nil. When unset, the
// stats view omits the Balancer and Health sections, the API-key endpoints
// report 503, and /gateway/metrics falls back to the plain JSON stats view.
type Config struct {
	Router   Router
	Gate     Gate
	Registry RegistryAdmin
	Balancer BalancerStats
	Health   HealthStats
	APIKeys  APIKeyAdmin
	Metrics  MetricsHandler
}

// New constructs a Server. startTime is recorded at construction for the
// /gateway/health uptime field.
func New(cfg Config) *Server {
	return &Server{
		router:    cfg.Router,
		gate:      cfg.Gate,
		registry:  cfg.Registry,
		balancer:  cfg.Balancer,
		health:    cfg.Health,
		apiKeys:   cfg.APIKeys,
		metrics:   cfg.Metrics,
		startTime: time.Now(),
	}
}
