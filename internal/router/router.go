package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/giantswarm/mcp-gateway/internal/backend"
	"github.com/giantswarm/mcp-gateway/internal/mcpclient"
	"github.com/giantswarm/mcp-gateway/internal/model"
)

// RegistrySource is the slice of registry.Store the router reads.
type RegistrySource interface {
	GetHealthyInstances(templateName string) ([]*model.Instance, error)
	GetTemplate(templateName string) (*model.Template, error)
}

// LoadBalancer is the slice of loadbalancer.Balancer the router drives.
type LoadBalancer interface {
	Select(templateName string, candidates []*model.Instance, strategy model.Strategy) *model.Instance
	RecordRequestStart(instance *model.Instance)
	RecordRequestEnd(instance *model.Instance, success bool)
}

// stdioLookup is satisfied by backend.StaticBackendDriver: the router
// needs the actual command to spawn, not just a yes/no answer, once
// SupportsStdio says a fallback is possible.
type stdioLookup interface {
	Lookup(templateName string) (backend.StdioTemplate, bool)
}

// Router implements route(template, method, params, principal).
type Router struct {
	registry  RegistrySource
	lb        LoadBalancer
	transport mcpclient.Transport
	driver    backend.Driver
}

// New constructs a Router. driver may be nil, meaning no template ever
// supports stdio fallback.
func New(registry RegistrySource, lb LoadBalancer, transport mcpclient.Transport, driver backend.Driver) *Router {
	return &Router{registry: registry, lb: lb, transport: transport, driver: driver}
}

// Route resolves one MCP call. principal is accepted for parity with the
// spec's entry contract and future per-principal policy hooks; the
// current algorithm does not yet branch on it.
func (r *Router) Route(ctx context.Context, templateName, method string, params map[string]interface{}, principal *model.Principal) ([]byte, error) {
	_ = principal

	if err := validateParams(method, params); err != nil {
		return nil, err
	}

	candidates, _ := r.registry.GetHealthyInstances(templateName)
	if len(candidates) == 0 {
		return r.stdioFallback(ctx, templateName, method, params)
	}

	tmpl, err := r.registry.GetTemplate(templateName)
	if err != nil {
		return r.stdioFallback(ctx, templateName, method, params)
	}

	return r.dispatchWithRetry(ctx, tmpl, candidates, method, params)
}

func (r *Router) dispatchWithRetry(ctx context.Context, tmpl *model.Template, candidates []*model.Instance, method string, params map[string]interface{}) ([]byte, error) {
	strategy := tmpl.LoadBalancer.Strategy
	maxRetries := tmpl.LoadBalancer.MaxRetries
	timeout := tmpl.LoadBalancer.Timeout()
	poolSize := tmpl.LoadBalancer.PoolSize

	local := append([]*model.Instance(nil), candidates...)
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		instance := r.lb.Select(tmpl.Name, local, strategy)
		if instance == nil {
			return r.stdioFallback(ctx, tmpl.Name, method, params)
		}

		r.lb.RecordRequestStart(instance)
		dispatchCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := r.dispatchToInstance(dispatchCtx, instance, poolSize, method, params)
		cancel()

		if err == nil {
			r.lb.RecordRequestEnd(instance, true)
			return result, nil
		}

		r.lb.RecordRequestEnd(instance, false)
		lastErr = err
		var routeErr *Error
		if errors.As(err, &routeErr) {
			return nil, err
		}
		var protocolErr *mcpclient.ProtocolError
		if errors.As(err, &protocolErr) {
			return nil, newError(KindBadGateway, fmt.Sprintf("malformed response from instance %s", instance.ID), err)
		}
		local = removeInstance(local, instance.ID)
		if len(local) == 0 {
			break
		}
	}

	return nil, newError(KindBadGateway, fmt.Sprintf("all retries exhausted for template %s", tmpl.Name), lastErr)
}

func (r *Router) dispatchToInstance(ctx context.Context, instance *model.Instance, poolSize int, method string, params map[string]interface{}) ([]byte, error) {
	switch tr := instance.Transport.(type) {
	case model.HTTPTransport:
		return r.transport.DispatchHTTP(ctx, tr.Endpoint, method, params)
	case model.StdioTransport:
		return r.transport.DispatchStdio(ctx, instance.TemplateName, poolSize, tr.Command, tr.WorkingDir, tr.Env, method, params)
	default:
		return nil, newError(KindInternalError, fmt.Sprintf("unrecognized transport for instance %s", instance.ID), nil)
	}
}

func (r *Router) stdioFallback(ctx context.Context, templateName, method string, params map[string]interface{}) ([]byte, error) {
	_, err := r.registry.GetTemplate(templateName)
	if err != nil {
		return nil, newError(KindNotFound, fmt.Sprintf("template %q not found", templateName), nil)
	}

	if r.driver == nil {
		return nil, newError(KindServiceUnavailable, fmt.Sprintf("deploy %s first", templateName), ErrNoBackendDriver)
	}

	supports, err := r.driver.SupportsStdio(ctx, templateName)
	if err != nil || !supports {
		return nil, newError(KindServiceUnavailable, fmt.Sprintf("deploy %s first", templateName), err)
	}

	lookup, ok := r.driver.(stdioLookup)
	if !ok {
		return nil, newError(KindServiceUnavailable, fmt.Sprintf("deploy %s first", templateName), nil)
	}
	entry, found := lookup.Lookup(templateName)
	if !found {
		return nil, newError(KindServiceUnavailable, fmt.Sprintf("deploy %s first", templateName), nil)
	}

	result, err := r.transport.DispatchStdioEphemeral(ctx, entry.Command, entry.WorkingDir, entry.Env, method, params)
	if err != nil {
		return nil, newError(KindBadGateway, fmt.Sprintf("stdio fallback dispatch failed for %s", templateName), err)
	}

	augmented, err := augmentWithGatewayInfo(result, "stdio-ephemeral")
	if err != nil {
		return nil, newError(KindInternalError, "augment stdio fallback result", err)
	}
	return augmented, nil
}

func removeInstance(instances []*model.Instance, id string) []*model.Instance {
	out := instances[:0]
	for _, inst := range instances {
		if inst.ID != id {
			out = append(out, inst)
		}
	}
	return out
}
