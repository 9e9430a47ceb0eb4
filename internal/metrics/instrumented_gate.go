package metrics

import (
	"context"
	"time"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// Gate is the subset of auth.Gate's interface InstrumentedGate wraps;
// declared locally so this package never imports internal/auth.
type Gate interface {
	Authenticate(ctx context.Context, headerValue, clientKey string) (*model.Principal, error)
	AuthenticatePassword(ctx context.Context, username, password string) (string, time.Time, error)
}

// InstrumentedGate wraps a Gate, recording authentication attempts by
// method and result. It satisfies httpapi.Gate.
type InstrumentedGate struct {
	next Gate
	m    *Metrics
}

// InstrumentGate wraps next with metrics recording against m.
func InstrumentGate(next Gate, m *Metrics) *InstrumentedGate {
	return &InstrumentedGate{next: next, m: m}
}

// Authenticate delegates to the wrapped Gate and records the bearer/
// API-key attempt's outcome.
func (g *InstrumentedGate) Authenticate(ctx context.Context, headerValue, clientKey string) (*model.Principal, error) {
	principal, err := g.next.Authenticate(ctx, headerValue, clientKey)
	g.m.AuthAttempts.WithLabelValues("token", resultLabel(err)).Inc()
	return principal, err
}

// AuthenticatePassword delegates to the wrapped Gate and records the
// password exchange's outcome.
func (g *InstrumentedGate) AuthenticatePassword(ctx context.Context, username, password string) (string, time.Time, error) {
	token, expiresAt, err := g.next.AuthenticatePassword(ctx, username, password)
	g.m.AuthAttempts.WithLabelValues("password", resultLabel(err)).Inc()
	return token, expiresAt, err
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
