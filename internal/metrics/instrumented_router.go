package metrics

import (
	"context"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// Router is the subset of router.Router's interface InstrumentedRouter
// wraps; declared locally so this package never imports internal/router.
type Router interface {
	Route(ctx context.Context, templateName, method string, params map[string]interface{}, principal *model.Principal) ([]byte, error)
}

// InstrumentedRouter wraps a Router, recording dispatch latency and outcome
// per template without changing routing semantics. It satisfies
// httpapi.Router, so it can be substituted in wherever the bare router.Router
// is wired.
type InstrumentedRouter struct {
	next Router
	m    *Metrics
}

// InstrumentRouter wraps next with metrics recording against m.
func InstrumentRouter(next Router, m *Metrics) *InstrumentedRouter {
	return &InstrumentedRouter{next: next, m: m}
}

// Route delegates to the wrapped Router, then records its latency and
// success/failure outcome.
func (r *InstrumentedRouter) Route(ctx context.Context, templateName, method string, params map[string]interface{}, principal *model.Principal) ([]byte, error) {
	start := time.Now()
	result, err := r.next.Route(ctx, templateName, method, params, principal)
	r.m.RouterLatency.WithLabelValues(templateName).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.m.RouterDispatches.WithLabelValues(templateName, outcome).Inc()
	return result, err
}
