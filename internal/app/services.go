package app

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/auth"
	"github.com/giantswarm/mcp-gateway/internal/backend"
	gatewayconfig "github.com/giantswarm/mcp-gateway/internal/config"
	"github.com/giantswarm/mcp-gateway/internal/health"
	"github.com/giantswarm/mcp-gateway/internal/httpapi"
	"github.com/giantswarm/mcp-gateway/internal/loadbalancer"
	"github.com/giantswarm/mcp-gateway/internal/mcpclient"
	"github.com/giantswarm/mcp-gateway/internal/metrics"
	"github.com/giantswarm/mcp-gateway/internal/registry"
	"github.com/giantswarm/mcp-gateway/internal/router"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// authAdmin is the union of UserStore, APIKeyStore, and httpapi.APIKeyAdmin
// both SQLStore and MemoryStore satisfy, so Services can hold exactly one
// store value and hand it to both the Gate and the Server.
type authAdmin interface {
	auth.UserStore
	auth.APIKeyStore
	httpapi.APIKeyAdmin
}

// Services holds every wired component of a running gateway, assembled by
// InitializeServices and driven by Application.Run.
type Services struct {
	Config   *gatewayconfig.GatewayConfig
	Registry *registry.Store
	Balancer *loadbalancer.Balancer
	Checker  *health.Checker
	Layer    *mcpclient.Layer
	Gate     *auth.Gate
	AuthAdmin authAdmin
	Driver   backend.Driver
	Router   *router.Router
	Metrics  *metrics.Metrics
	HTTP     *httpapi.Server
	Watcher  *gatewayconfig.Watcher
}

// InitializeServices wires every gateway component from cfg in dependency
// order: persistence, then the catalogue and auth stores built on it, then
// the stateless collaborators (balancer, client layer, driver), then the
// Request Router and Gateway Front-End that compose them.
func InitializeServices(ctx context.Context, cfg *gatewayconfig.GatewayConfig) (*Services, error) {
	svc := &Services{Config: cfg}

	persistLayer, authStore, err := openPersistence(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc.Registry = registry.New(persistLayer)
	if err := svc.Registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("load registry catalogue: %w", err)
	}

	svc.Balancer = loadbalancer.New()
	svc.Layer = mcpclient.NewLayer()
	svc.Driver = gatewayconfig.BuildBackendDriver(cfg.Backends)

	svc.Checker = health.New(svc.Registry, mcpclient.NewHealthProber(), health.DefaultConfig())

	signingKey := []byte(cfg.Auth.JWTSigningKey)
	if len(signingKey) == 0 {
		logging.Warn("Bootstrap", "no auth.jwt_signing_key configured, generating an ephemeral one; tokens will not survive a restart")
		signingKey = ephemeralSigningKey()
	}
	tokens := auth.NewTokenIssuer(signingKey, cfg.Auth.TokenTTL)
	limiter := auth.NewRateLimiter(cfg.Auth.RateLimitAttempts, cfg.Auth.RateLimitWindow)
	svc.AuthAdmin = authStore
	svc.Gate = auth.NewGate(authStore, authStore, tokens, limiter)

	svc.Router = router.New(svc.Registry, svc.Balancer, svc.Layer, svc.Driver)

	svc.Metrics = metrics.New()

	svc.HTTP = httpapi.New(httpapi.Config{
		Router:   metrics.InstrumentRouter(svc.Router, svc.Metrics),
		Gate:     metrics.InstrumentGate(svc.Gate, svc.Metrics),
		Registry: svc.Registry,
		Balancer: svc.Balancer,
		Health:   svc.Checker,
		APIKeys:  svc.AuthAdmin,
		Metrics:  svc.Metrics,
	})

	return svc, nil
}

func openPersistence(ctx context.Context, cfg *gatewayconfig.GatewayConfig) (registry.PersistLayer, authAdmin, error) {
	switch cfg.Database.Mode {
	case gatewayconfig.PersistenceSQL:
		sqlPersist, err := registry.OpenSQLPersistence(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sql persistence: %w", err)
		}
		return sqlPersist, auth.NewSQLStore(sqlPersist.DB()), nil

	case gatewayconfig.PersistenceFile:
		filePersist := registry.NewFileSnapshotPersistence(cfg.Snapshot.Path)
		authStore, err := auth.NewMemoryStore(cfg.Snapshot.AuthPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open file auth store: %w", err)
		}
		return filePersist, authStore, nil

	default:
		return nil, nil, fmt.Errorf("unknown persistence mode %q", cfg.Database.Mode)
	}
}

// Close releases every resource Services opened: stdio subprocess pools
// (killing any still-running child processes) and the persistence layer
// (which, in sql mode, owns the one database/sql handle the auth store
// shares). The health checker and config watcher own no resources beyond
// the goroutines Application.Run already stops via context cancellation.
func (s *Services) Close() {
	if s.Layer != nil {
		s.Layer.Shutdown()
	}
	if s.Registry != nil {
		if err := s.Registry.Close(); err != nil {
			logging.Warn("Bootstrap", "error closing registry: %v", err)
		}
	}
}

func ephemeralSigningKey() []byte {
	return []byte(fmt.Sprintf("ephemeral-%d", time.Now().UnixNano()))
}
