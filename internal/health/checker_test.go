package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

type stubRegistry struct {
	mu        sync.Mutex
	instances []*model.Instance
	updates   []update
}

type update struct {
	template, instance string
	status             model.Status
	failures           int
}

func (s *stubRegistry) ListAllInstances() []*model.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Instance(nil), s.instances...)
}

func (s *stubRegistry) UpdateInstanceHealth(_ context.Context, templateName, instanceID string, status model.Status, failures int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update{templateName, instanceID, status, failures})
	return nil
}

type stubProber struct {
	httpErr, stdioErr error
}

func (p *stubProber) ProbeHTTP(context.Context, string) error { return p.httpErr }
func (p *stubProber) ProbeStdio(context.Context, []string, string, map[string]string) error {
	return p.stdioErr
}

func TestTickMarksSuccessfulProbeHealthy(t *testing.T) {
	reg := &stubRegistry{instances: []*model.Instance{
		{ID: "a", TemplateName: "demo", Transport: model.HTTPTransport{Endpoint: "http://x"}},
	}}
	checker := New(reg, &stubProber{}, DefaultConfig())

	checker.tick(context.Background())

	require.Len(t, reg.updates, 1)
	assert.Equal(t, model.StatusHealthy, reg.updates[0].status)
	assert.Equal(t, 0, reg.updates[0].failures)
}

func TestTickMarksFailedProbeUnhealthyAndIncrementsFailures(t *testing.T) {
	reg := &stubRegistry{instances: []*model.Instance{
		{ID: "a", TemplateName: "demo", Transport: model.HTTPTransport{Endpoint: "http://x"}, ConsecutiveFailures: 2},
	}}
	checker := New(reg, &stubProber{httpErr: errors.New("boom")}, DefaultConfig())

	checker.tick(context.Background())

	require.Len(t, reg.updates, 1)
	assert.Equal(t, model.StatusUnhealthy, reg.updates[0].status)
	assert.Equal(t, 3, reg.updates[0].failures)
}

func TestTickRoutesStdioInstancesToStdioProbe(t *testing.T) {
	reg := &stubRegistry{instances: []*model.Instance{
		{ID: "a", TemplateName: "demo", Transport: model.StdioTransport{Command: []string{"server"}}},
	}}
	prober := &stubProber{stdioErr: errors.New("crash")}
	checker := New(reg, prober, DefaultConfig())

	checker.tick(context.Background())

	require.Len(t, reg.updates, 1)
	assert.Equal(t, model.StatusUnhealthy, reg.updates[0].status)
}

func TestOneFailingProbeDoesNotStopOthers(t *testing.T) {
	reg := &stubRegistry{instances: []*model.Instance{
		{ID: "a", TemplateName: "demo", Transport: model.HTTPTransport{Endpoint: "http://a"}},
		{ID: "b", TemplateName: "demo", Transport: model.HTTPTransport{Endpoint: "http://b"}},
	}}
	prober := &stubProber{httpErr: errors.New("boom")}
	checker := New(reg, prober, DefaultConfig())

	checker.tick(context.Background())

	assert.Len(t, reg.updates, 2)
}

func TestStatsAccumulateAcrossTicks(t *testing.T) {
	reg := &stubRegistry{instances: []*model.Instance{
		{ID: "a", TemplateName: "demo", Transport: model.HTTPTransport{Endpoint: "http://a"}},
	}}
	checker := New(reg, &stubProber{}, DefaultConfig())

	checker.tick(context.Background())
	checker.tick(context.Background())

	stats := checker.Snapshot()
	assert.Equal(t, 2, stats.TotalProbes)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, float64(100), stats.SuccessRatePercent())
	assert.False(t, stats.LastTick.IsZero())
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	reg := &stubRegistry{}
	checker := New(reg, &stubProber{}, Config{Interval: time.Millisecond, MaxConcurrency: 1, ProbeTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
