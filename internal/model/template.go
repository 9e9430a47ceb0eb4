package model

import (
	"fmt"
	"time"
)

// Strategy names a load-balancer selection algorithm.
type Strategy string

const (
	StrategyRoundRobin       Strategy = "round_robin"
	StrategyLeastConnections Strategy = "least_connections"
	StrategyWeighted         Strategy = "weighted"
	StrategyHealthBased      Strategy = "health_based"
	StrategyRandom           Strategy = "random"
)

// Valid reports whether s is one of the recognized strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyRoundRobin, StrategyLeastConnections, StrategyWeighted, StrategyHealthBased, StrategyRandom:
		return true
	}
	return false
}

// LoadBalancerConfig is the per-template policy consumed by the Load
// Balancer and Request Router.
type LoadBalancerConfig struct {
	Strategy               Strategy
	HealthCheckIntervalSec int
	MaxRetries             int
	PoolSize               int
	TimeoutSec             int
}

// DefaultLoadBalancerConfig returns the configuration applied to a template
// created implicitly by the first instance registered under its name.
func DefaultLoadBalancerConfig() LoadBalancerConfig {
	return LoadBalancerConfig{
		Strategy:               StrategyRoundRobin,
		HealthCheckIntervalSec: 30,
		MaxRetries:             3,
		PoolSize:               5,
		TimeoutSec:             30,
	}
}

// Validate clamps nothing; it rejects out-of-bounds configurations outright,
// leaving the caller to decide whether to fall back to defaults or reject
// the mutation.
func (c LoadBalancerConfig) Validate() error {
	if !c.Strategy.Valid() {
		return fmt.Errorf("unrecognized load balancer strategy %q", c.Strategy)
	}
	if c.HealthCheckIntervalSec < 5 || c.HealthCheckIntervalSec > 300 {
		return fmt.Errorf("health_check_interval_sec must be in [5,300], got %d", c.HealthCheckIntervalSec)
	}
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be in [1,10], got %d", c.MaxRetries)
	}
	if c.PoolSize < 1 || c.PoolSize > 20 {
		return fmt.Errorf("pool_size must be in [1,20], got %d", c.PoolSize)
	}
	if c.TimeoutSec < 5 || c.TimeoutSec > 300 {
		return fmt.Errorf("timeout_sec must be in [5,300], got %d", c.TimeoutSec)
	}
	return nil
}

func (c LoadBalancerConfig) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalSec) * time.Second
}

func (c LoadBalancerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Template is a named group of interchangeable MCP server instances.
// The Registry Store is the sole owner of Template and Instance records;
// every other component holds only copies obtained through its query
// methods.
type Template struct {
	Name          string
	Description   string
	LoadBalancer  LoadBalancerConfig
	Instances     map[string]*Instance
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTemplate creates an empty template with the default load-balancer
// configuration.
func NewTemplate(name string) *Template {
	now := time.Now()
	return &Template{
		Name:         name,
		LoadBalancer: DefaultLoadBalancerConfig(),
		Instances:    make(map[string]*Instance),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// InstanceList returns the template's instances as a slice, ordered by
// insertion order is NOT guaranteed by a Go map; callers that need
// insertion-ordered iteration (round_robin) must consult the Registry's
// order index instead of this method.
func (t *Template) InstanceList() []*Instance {
	out := make([]*Instance, 0, len(t.Instances))
	for _, inst := range t.Instances {
		out = append(out, inst)
	}
	return out
}
