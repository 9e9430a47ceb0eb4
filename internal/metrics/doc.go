// Package metrics exposes Prometheus counters and gauges for the Registry
// Store, Load Balancer, Health Checker, Request Router, and Auth Gate,
// scraped via GET /gateway/metrics.
//
// Each call to New builds a fresh metric set and registers it against its
// own private prometheus.Registry. Call sites record against the returned
// *Metrics value; nothing here touches HTTP directly beyond Handler, which
// hands back the promhttp exposition handler.
//
// Router and Auth Gate outcomes are recorded by the InstrumentedRouter and
// InstrumentedGate decorators. The balancer and health counters are
// registered but no component increments them, and the registry gauges
// change only through ObserveRegistryStats, which no component calls.
package metrics
