package loadbalancer

// InstanceStats is the per-instance slice of Stats.
type InstanceStats struct {
	RequestCount        int `json:"request_count"`
	ActiveConnections   int `json:"active_connections"`
	ConsecutiveFailures int `json:"consecutive_failures"`
}

// Stats summarizes the balancer's bookkeeping for the /gateway/stats
// endpoint.
type Stats struct {
	TotalRequests        int                      `json:"total_requests"`
	PerInstance          map[string]InstanceStats `json:"per_instance"`
	AvailableStrategies  []string                 `json:"available_strategies"`
}

// Stats returns a point-in-time snapshot of the balancer's counters.
func (b *Balancer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	per := make(map[string]InstanceStats, len(b.counters))
	for id, c := range b.counters {
		per[id] = InstanceStats{
			RequestCount:        c.requestCount,
			ActiveConnections:   c.activeConnections,
			ConsecutiveFailures: c.consecutiveFailures,
		}
	}

	strategies := AvailableStrategies()
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, string(s))
	}

	return Stats{
		TotalRequests:       b.totalRequests,
		PerInstance:         per,
		AvailableStrategies: names,
	}
}
