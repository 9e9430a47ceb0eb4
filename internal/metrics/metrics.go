package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mcp_gateway"

// Metrics holds every counter and gauge the gateway exposes, all registered on a private registry rather than the global
// default one so multiple gateways can run in the same test binary without
// a duplicate-registration panic.
type Metrics struct {
	registry *prometheus.Registry

	RegistryTemplates prometheus.Gauge
	RegistryInstances *prometheus.GaugeVec

	BalancerRequests *prometheus.CounterVec

	HealthChecks *prometheus.CounterVec

	RouterDispatches *prometheus.CounterVec
	RouterLatency    *prometheus.HistogramVec

	AuthAttempts *prometheus.CounterVec
}

// New builds and registers a fresh metrics set.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		RegistryTemplates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "templates",
			Help:      "Number of templates currently registered.",
		}),
		RegistryInstances: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "instances",
			Help:      "Number of registered instances, by status.",
		}, []string{"status"}),

		BalancerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balancer",
			Name:      "requests_total",
			Help:      "Load balancer selections, by template and strategy.",
		}, []string{"template", "strategy"}),

		HealthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "checks_total",
			Help:      "Health probes performed, by template and result.",
		}, []string{"template", "result"}),

		RouterDispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "dispatches_total",
			Help:      "Request Router dispatch outcomes, by template and outcome.",
		}, []string{"template", "outcome"}),
		RouterLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "dispatch_seconds",
			Help:      "Request Router dispatch latency, by template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"template"}),

		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts, by method and result.",
		}, []string{"method", "result"}),
	}

	reg.MustRegister(
		m.RegistryTemplates,
		m.RegistryInstances,
		m.BalancerRequests,
		m.HealthChecks,
		m.RouterDispatches,
		m.RouterLatency,
		m.AuthAttempts,
	)
	return m
}

// Handler returns the Prometheus exposition HTTP handler for this metrics
// set, mounted at GET /gateway/metrics without authentication.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
