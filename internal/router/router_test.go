package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-gateway/internal/backend"
	"github.com/giantswarm/mcp-gateway/internal/model"
)

// --- stubs ---------------------------------------------------------------

var errStubTemplateNotFound = errors.New("template not found")

type stubRegistry struct {
	templates map[string]*model.Template
	healthy   map[string][]*model.Instance
}

func (s *stubRegistry) GetTemplate(name string) (*model.Template, error) {
	t, ok := s.templates[name]
	if !ok {
		return nil, errStubTemplateNotFound
	}
	return t, nil
}

func (s *stubRegistry) GetHealthyInstances(name string) ([]*model.Instance, error) {
	if _, ok := s.templates[name]; !ok {
		return nil, errStubTemplateNotFound
	}
	return s.healthy[name], nil
}

type recordedCall struct {
	instance string
	success  bool
}

type stubBalancer struct {
	selectSequence []string // instance IDs to hand out, in order, skipping ones no longer in candidates
	calls          []recordedCall
}

func (b *stubBalancer) Select(_ string, candidates []*model.Instance, _ model.Strategy) *model.Instance {
	for len(b.selectSequence) > 0 {
		id := b.selectSequence[0]
		b.selectSequence = b.selectSequence[1:]
		for _, c := range candidates {
			if c.ID == id {
				return c
			}
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return nil
}

func (b *stubBalancer) RecordRequestStart(*model.Instance) {}

func (b *stubBalancer) RecordRequestEnd(inst *model.Instance, success bool) {
	b.calls = append(b.calls, recordedCall{instance: inst.ID, success: success})
}

type stubTransport struct {
	httpErrFor map[string]error // endpoint -> error
	httpResult []byte
	stdioErr   error
	stdioResult []byte
	ephemeralErr    error
	ephemeralResult []byte
	ephemeralCalled bool
}

func (t *stubTransport) DispatchHTTP(_ context.Context, endpoint, _ string, _ map[string]interface{}) ([]byte, error) {
	if err, ok := t.httpErrFor[endpoint]; ok && err != nil {
		return nil, err
	}
	if t.httpResult != nil {
		return t.httpResult, nil
	}
	return []byte(`{"ok":true}`), nil
}

func (t *stubTransport) DispatchStdio(_ context.Context, _ string, _ int, _ []string, _ string, _ map[string]string, _ string, _ map[string]interface{}) ([]byte, error) {
	if t.stdioErr != nil {
		return nil, t.stdioErr
	}
	if t.stdioResult != nil {
		return t.stdioResult, nil
	}
	return []byte(`{"ok":true}`), nil
}

func (t *stubTransport) DispatchStdioEphemeral(_ context.Context, _ []string, _ string, _ map[string]string, _ string, _ map[string]interface{}) ([]byte, error) {
	t.ephemeralCalled = true
	if t.ephemeralErr != nil {
		return nil, t.ephemeralErr
	}
	if t.ephemeralResult != nil {
		return t.ephemeralResult, nil
	}
	return []byte(`{"ok":true}`), nil
}

type stubDriver struct {
	supported map[string]bool
	entries   map[string]backend.StdioTemplate
}

func (d *stubDriver) SupportsStdio(_ context.Context, name string) (bool, error) {
	return d.supported[name], nil
}

func (d *stubDriver) Lookup(name string) (backend.StdioTemplate, bool) {
	e, ok := d.entries[name]
	return e, ok
}

// --- fixtures --------------------------------------------------------------

func httpInstance(id string) *model.Instance {
	return &model.Instance{
		ID:           id,
		TemplateName: "demo",
		Transport:    model.HTTPTransport{Endpoint: "http://" + id + ".local"},
		Status:       model.StatusHealthy,
		IsActive:     true,
	}
}

func demoTemplate() *model.Template {
	tmpl := model.NewTemplate("demo")
	tmpl.LoadBalancer.MaxRetries = 3
	return tmpl
}

// --- tests -----------------------------------------------------------------

func TestRouteDispatchesToSelectedInstanceOnSuccess(t *testing.T) {
	inst := httpInstance("a")
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": demoTemplate()},
		healthy:   map[string][]*model.Instance{"demo": {inst}},
	}
	lb := &stubBalancer{}
	transport := &stubTransport{}
	r := New(registry, lb, transport, nil)

	result, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
	require.Len(t, lb.calls, 1)
	assert.True(t, lb.calls[0].success)
}

func TestRouteRetriesAcrossInstancesOnFailure(t *testing.T) {
	a, b := httpInstance("a"), httpInstance("b")
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": demoTemplate()},
		healthy:   map[string][]*model.Instance{"demo": {a, b}},
	}
	lb := &stubBalancer{selectSequence: []string{"a", "b"}}
	transport := &stubTransport{
		httpErrFor: map[string]error{"http://a.local": errors.New("connection refused")},
		httpResult: []byte(`{"ok":true}`),
	}
	r := New(registry, lb, transport, nil)

	result, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
	require.Len(t, lb.calls, 2)
	assert.Equal(t, "a", lb.calls[0].instance)
	assert.False(t, lb.calls[0].success)
	assert.Equal(t, "b", lb.calls[1].instance)
	assert.True(t, lb.calls[1].success)
}

func TestRouteExhaustsRetriesAndReturnsBadGateway(t *testing.T) {
	a, b := httpInstance("a"), httpInstance("b")
	tmpl := demoTemplate()
	tmpl.LoadBalancer.MaxRetries = 2
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": tmpl},
		healthy:   map[string][]*model.Instance{"demo": {a, b}},
	}
	lb := &stubBalancer{selectSequence: []string{"a", "b"}}
	transport := &stubTransport{
		httpErrFor: map[string]error{
			"http://a.local": errors.New("boom"),
			"http://b.local": errors.New("boom"),
		},
	}
	r := New(registry, lb, transport, nil)

	_, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindBadGateway, routeErr.Kind)
}

func TestRouteFallsBackToStdioWhenNoHealthyInstances(t *testing.T) {
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": demoTemplate()},
		healthy:   map[string][]*model.Instance{},
	}
	lb := &stubBalancer{}
	transport := &stubTransport{ephemeralResult: []byte(`{"tools":[]}`)}
	driver := &stubDriver{
		supported: map[string]bool{"demo": true},
		entries:   map[string]backend.StdioTemplate{"demo": {TemplateName: "demo", Command: []string{"demo-server"}}},
	}
	r := New(registry, lb, transport, driver)

	result, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.NoError(t, err)
	assert.True(t, transport.ephemeralCalled)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(result, &decoded))
	info, ok := decoded["_gateway_info"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "stdio-ephemeral", info["backend"])
	assert.Equal(t, true, info["used_stdio_fallback"])
}

func TestRouteReturnsServiceUnavailableWhenStdioNotSupported(t *testing.T) {
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": demoTemplate()},
		healthy:   map[string][]*model.Instance{},
	}
	lb := &stubBalancer{}
	transport := &stubTransport{}
	driver := &stubDriver{supported: map[string]bool{}}
	r := New(registry, lb, transport, driver)

	_, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindServiceUnavailable, routeErr.Kind)
	assert.False(t, transport.ephemeralCalled)
}

func TestRouteReturnsServiceUnavailableWhenNoDriverConfigured(t *testing.T) {
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": demoTemplate()},
		healthy:   map[string][]*model.Instance{},
	}
	lb := &stubBalancer{}
	transport := &stubTransport{}
	r := New(registry, lb, transport, nil)

	_, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindServiceUnavailable, routeErr.Kind)
}

func TestRouteReturnsNotFoundForUnknownTemplate(t *testing.T) {
	registry := &stubRegistry{templates: map[string]*model.Template{}, healthy: map[string][]*model.Instance{}}
	lb := &stubBalancer{}
	transport := &stubTransport{}
	r := New(registry, lb, transport, nil)

	_, err := r.Route(context.Background(), "ghost", "tools/list", nil, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindNotFound, routeErr.Kind)
}

func TestRouteRejectsToolsCallMissingName(t *testing.T) {
	registry := &stubRegistry{templates: map[string]*model.Template{"demo": demoTemplate()}}
	r := New(registry, &stubBalancer{}, &stubTransport{}, nil)

	_, err := r.Route(context.Background(), "demo", "tools/call", map[string]interface{}{}, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindBadRequest, routeErr.Kind)
}

func TestRouteRejectsResourcesReadMissingURI(t *testing.T) {
	registry := &stubRegistry{templates: map[string]*model.Template{"demo": demoTemplate()}}
	r := New(registry, &stubBalancer{}, &stubTransport{}, nil)

	_, err := r.Route(context.Background(), "demo", "resources/read", map[string]interface{}{"uri": ""}, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindBadRequest, routeErr.Kind)
}

func TestRouteUnrecognizedTransportReturnsInternalError(t *testing.T) {
	inst := &model.Instance{
		ID:           "weird",
		TemplateName: "demo",
		Transport:    nil,
		Status:       model.StatusHealthy,
		IsActive:     true,
	}
	registry := &stubRegistry{
		templates: map[string]*model.Template{"demo": demoTemplate()},
		healthy:   map[string][]*model.Instance{"demo": {inst}},
	}
	lb := &stubBalancer{}
	transport := &stubTransport{}
	r := New(registry, lb, transport, nil)

	_, err := r.Route(context.Background(), "demo", "tools/list", nil, nil)
	require.Error(t, err)
	var routeErr *Error
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, KindInternalError, routeErr.Kind)
}
