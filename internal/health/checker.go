package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/giantswarm/mcp-gateway/internal/model"
	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// RegistrySource is the slice of registry.Store the checker needs: read
// every instance, write back only health fields.
type RegistrySource interface {
	ListAllInstances() []*model.Instance
	UpdateInstanceHealth(ctx context.Context, templateName, instanceID string, status model.Status, consecutiveFailures int) error
}

// Config tunes the checker's cadence, concurrency, and per-probe timeout.
type Config struct {
	Interval       time.Duration
	MaxConcurrency int64
	ProbeTimeout   time.Duration
}

// DefaultConfig matches the defaults: 30s cadence, 10
// concurrent probes, 10s per-probe timeout.
func DefaultConfig() Config {
	return Config{Interval: 30 * time.Second, MaxConcurrency: 10, ProbeTimeout: 10 * time.Second}
}

// Checker runs the background probe loop.
type Checker struct {
	registry RegistrySource
	prober   Prober
	cfg      Config
	sem      *semaphore.Weighted

	mu    sync.Mutex
	stats Stats
}

// Stats surfaces the checker's running counters for /gateway/stats.
type Stats struct {
	TotalProbes   int       `json:"total_probes"`
	SuccessCount  int       `json:"success_count"`
	FailureCount  int       `json:"failure_count"`
	LastTick      time.Time `json:"last_tick"`
}

// SuccessRatePercent returns the running success rate, 0 when no probes
// have run yet.
func (s Stats) SuccessRatePercent() float64 {
	if s.TotalProbes == 0 {
		return 0
	}
	return 100 * float64(s.SuccessCount) / float64(s.TotalProbes)
}

// New constructs a Checker. cfg zero values are replaced with
// DefaultConfig's.
func New(registry RegistrySource, prober Prober, cfg Config) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultConfig().ProbeTimeout
	}
	return &Checker{
		registry: registry,
		prober:   prober,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrency),
	}
}

// Run blocks, ticking every cfg.Interval, until ctx is cancelled. Each tick
// probes a snapshot of all instances concurrently, bounded by the
// configured semaphore.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Checker) tick(ctx context.Context) {
	instances := c.registry.ListAllInstances()

	var wg sync.WaitGroup
	for _, inst := range instances {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			// context cancelled mid-tick; stop issuing new probes but let
			// in-flight ones finish.
			break
		}
		wg.Add(1)
		go func(inst *model.Instance) {
			defer wg.Done()
			defer c.sem.Release(1)
			c.probeOne(ctx, inst)
		}(inst)
	}
	wg.Wait()

	c.mu.Lock()
	c.stats.LastTick = logging.Now()
	c.mu.Unlock()
}

func (c *Checker) probeOne(ctx context.Context, inst *model.Instance) {
	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	err := c.runProbe(probeCtx, inst)

	c.mu.Lock()
	c.stats.TotalProbes++
	if err == nil {
		c.stats.SuccessCount++
	} else {
		c.stats.FailureCount++
	}
	c.mu.Unlock()

	var status model.Status
	var failures int
	if err == nil {
		status = model.StatusHealthy
		failures = 0
	} else {
		status = model.StatusUnhealthy
		failures = inst.ConsecutiveFailures + 1
	}

	updateCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if updateErr := c.registry.UpdateInstanceHealth(updateCtx, inst.TemplateName, inst.ID, status, failures); updateErr != nil {
		logging.Error("HealthChecker", updateErr, "failed to write health result for %s/%s", inst.TemplateName, inst.ID)
	}
}

func (c *Checker) runProbe(ctx context.Context, inst *model.Instance) error {
	switch tr := inst.Transport.(type) {
	case model.HTTPTransport:
		return c.prober.ProbeHTTP(ctx, tr.Endpoint)
	case model.StdioTransport:
		return c.prober.ProbeStdio(ctx, tr.Command, tr.WorkingDir, tr.Env)
	default:
		return fmt.Errorf("health checker: unrecognized transport for instance %s", inst.ID)
	}
}

// Snapshot returns the current running stats.
func (c *Checker) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
