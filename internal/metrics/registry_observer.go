package metrics

import "github.com/giantswarm/mcp-gateway/internal/registry"

// ObserveRegistryStats updates the registry gauges from a point-in-time
// snapshot. Call it after every admin mutation and on a periodic tick, so
// the gauges track the catalogue even if a caller polls /gateway/metrics
// without having triggered a mutation itself.
func (m *Metrics) ObserveRegistryStats(stats registry.RegistryStats) {
	m.RegistryTemplates.Set(float64(stats.TemplateCount))
	m.RegistryInstances.WithLabelValues("total").Set(float64(stats.InstanceCount))
	m.RegistryInstances.WithLabelValues("healthy").Set(float64(stats.HealthyInstanceCount))
}
