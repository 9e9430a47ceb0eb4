package registry

import "github.com/giantswarm/mcp-gateway/internal/model"

// RegistryStats summarizes the catalogue for the /gateway/stats endpoint.
type RegistryStats struct {
	TemplateCount        int                      `json:"template_count"`
	InstanceCount        int                      `json:"instance_count"`
	HealthyInstanceCount int                      `json:"healthy_instance_count"`
	TemplatesByStrategy  map[model.Strategy]int   `json:"templates_by_strategy"`
	InstancesByBackend   map[model.Backend]int    `json:"instances_by_backend"`
}

// GetStats computes a point-in-time summary of the catalogue.
func (s *Store) GetStats() RegistryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := RegistryStats{
		TemplateCount:       len(s.templates),
		TemplatesByStrategy: make(map[model.Strategy]int),
		InstancesByBackend:  make(map[model.Backend]int),
	}

	for name, tmpl := range s.templates {
		stats.TemplatesByStrategy[tmpl.LoadBalancer.Strategy]++
		for _, id := range s.order[name] {
			inst, ok := tmpl.Instances[id]
			if !ok {
				continue
			}
			stats.InstanceCount++
			stats.InstancesByBackend[inst.Backend]++
			if inst.IsActive && inst.Status == model.StatusHealthy {
				stats.HealthyInstanceCount++
			}
		}
	}
	return stats
}
