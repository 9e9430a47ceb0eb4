// Package loadbalancer implements the Load Balancer: it picks one
// candidate instance from a healthy pool according to a Template's
// configured Strategy, and tracks the request-lifecycle counters that
// least_connections and weighted selection need.
//
// The Load Balancer owns only its own counters (active connection counts,
// round-robin cursors, weighted-selection cursors). It reads the Instance
// fields selection depends on (ID, ConsecutiveFailures, the weight in
// Metadata) but never writes Instance/Template fields; the Registry remains
// the sole owner of that state.
package loadbalancer
