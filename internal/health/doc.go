// Package health implements the Health Checker: a background loop that
// probes every registered instance on a fixed cadence and writes the
// result through the Registry's UpdateInstanceHealth, the only mutation
// health probing is allowed to perform.
//
// Probe concurrency is bounded by a golang.org/x/sync/semaphore.Weighted.
package health
