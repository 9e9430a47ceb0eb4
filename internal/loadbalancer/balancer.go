package loadbalancer

import (
	"math/rand"
	"sync"

	"github.com/giantswarm/mcp-gateway/internal/model"
)

// instanceCounters is the per-instance bookkeeping the balancer keeps,
// independent of and never written back to the Registry.
type instanceCounters struct {
	activeConnections   int
	requestCount        int
	consecutiveFailures int
}

// Balancer selects candidate instances and tracks the counters
// least_connections, weighted, and health_based need. A single Balancer
// instance is shared across all templates; its state is keyed by template
// name and instance ID so counters never collide.
type Balancer struct {
	mu sync.Mutex

	roundRobinCursor map[string]int            // keyed by template name
	weightedCursor   map[string]int            // keyed by template name, counts picks within the current weight cycle
	counters         map[string]*instanceCounters // keyed by instance ID

	totalRequests int

	rngSource func(n int) int // overridable in tests for determinism
}

// New constructs an empty Balancer.
func New() *Balancer {
	return &Balancer{
		roundRobinCursor: make(map[string]int),
		weightedCursor:   make(map[string]int),
		counters:         make(map[string]*instanceCounters),
		rngSource:        rand.Intn,
	}
}

func (b *Balancer) counterFor(id string) *instanceCounters {
	c, ok := b.counters[id]
	if !ok {
		c = &instanceCounters{}
		b.counters[id] = c
	}
	return c
}

// Select chooses one instance from candidates per strategy. It returns nil
// iff candidates is empty. An unrecognized strategy falls back to
// round_robin.
func (b *Balancer) Select(templateName string, candidates []*model.Instance, strategy model.Strategy) *model.Instance {
	if len(candidates) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch strategy {
	case model.StrategyLeastConnections:
		return b.selectLeastConnectionsLocked(candidates)
	case model.StrategyWeighted:
		return b.selectWeightedLocked(templateName, candidates)
	case model.StrategyHealthBased:
		return b.selectHealthBasedLocked(templateName, candidates)
	case model.StrategyRandom:
		return candidates[b.rngSource(len(candidates))]
	default:
		return b.selectRoundRobinLocked(templateName, candidates)
	}
}

func (b *Balancer) selectRoundRobinLocked(templateName string, candidates []*model.Instance) *model.Instance {
	idx := b.roundRobinCursor[templateName] % len(candidates)
	b.roundRobinCursor[templateName] = idx + 1
	return candidates[idx]
}

func (b *Balancer) selectLeastConnectionsLocked(candidates []*model.Instance) *model.Instance {
	best := candidates[0]
	bestActive := b.counterFor(best.ID).activeConnections
	for _, inst := range candidates[1:] {
		active := b.counterFor(inst.ID).activeConnections
		if active < bestActive {
			best, bestActive = inst, active
		}
	}
	return best
}

// selectWeightedLocked implements deterministic weighted round robin:
// expand candidates into a flat sequence where each instance appears
// `weight` times, in candidate order, then cycle through that sequence.
// Over one full cycle (sum of weights), each instance is selected exactly
// weight times.
func (b *Balancer) selectWeightedLocked(templateName string, candidates []*model.Instance) *model.Instance {
	sequence := make([]*model.Instance, 0, len(candidates))
	for _, inst := range candidates {
		w := inst.Weight()
		for i := 0; i < w; i++ {
			sequence = append(sequence, inst)
		}
	}
	if len(sequence) == 0 {
		// Weight() never returns less than 1, so a non-empty candidate
		// list never reaches this; it falls back to plain round robin
		// over the original list.
		return b.selectRoundRobinLocked(templateName, candidates)
	}
	idx := b.weightedCursor[templateName] % len(sequence)
	b.weightedCursor[templateName] = idx + 1
	return sequence[idx]
}

// selectHealthBasedLocked filters to the candidates with the lowest
// consecutive_failures, then round-robins within that subset using the
// same per-template cursor as round_robin (keyed separately so the two
// strategies never share state).
func (b *Balancer) selectHealthBasedLocked(templateName string, candidates []*model.Instance) *model.Instance {
	lowest := candidates[0].ConsecutiveFailures
	for _, inst := range candidates[1:] {
		if inst.ConsecutiveFailures < lowest {
			lowest = inst.ConsecutiveFailures
		}
	}
	filtered := make([]*model.Instance, 0, len(candidates))
	for _, inst := range candidates {
		if inst.ConsecutiveFailures == lowest {
			filtered = append(filtered, inst)
		}
	}
	key := "healthbased:" + templateName
	idx := b.roundRobinCursor[key] % len(filtered)
	b.roundRobinCursor[key] = idx + 1
	return filtered[idx]
}

// RecordRequestStart marks the start of a dispatch against instance,
// incrementing its active-connection count.
func (b *Balancer) RecordRequestStart(instance *model.Instance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.counterFor(instance.ID)
	c.activeConnections++
	c.requestCount++
	b.totalRequests++
}

// RecordRequestEnd marks the end of a dispatch, decrementing the shared
// active-connection count and updating the balancer's own rolling failure
// count for instance: a failure increments consecutiveFailures, a success
// resets it to zero. This is separate bookkeeping from the Health Checker's
// model.Instance.ConsecutiveFailures, which selectHealthBasedLocked reads;
// this one backs the /gateway/stats view of the balancer's own counters.
func (b *Balancer) RecordRequestEnd(instance *model.Instance, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.counterFor(instance.ID)
	if c.activeConnections > 0 {
		c.activeConnections--
	}
	if success {
		c.consecutiveFailures = 0
	} else {
		c.consecutiveFailures++
	}
}

// AvailableStrategies lists every strategy the balancer implements.
func AvailableStrategies() []model.Strategy {
	return []model.Strategy{
		model.StrategyRoundRobin,
		model.StrategyLeastConnections,
		model.StrategyWeighted,
		model.StrategyHealthBased,
		model.StrategyRandom,
	}
}
