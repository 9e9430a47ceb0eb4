// Package logging provides the structured, subsystem-tagged logging used by
// every component of the gateway.
//
// # Architecture
//
// Logging is built directly on log/slog. A package-level logger is
// configured once at startup via Init and every call site tags its message
// with a subsystem string (e.g. "Registry", "Router", "HealthChecker") so
// operators can filter a single component's output from the rest.
//
// # Log Levels
//
//   - Debug: detailed information useful only during development
//   - Info: general informational messages about gateway operation
//   - Warn: recoverable anomalies worth operator attention
//   - Error: failures; always carries the originating error value
//
// # Usage
//
//	logging.Init(logging.LevelInfo, os.Stdout)
//	logging.Info("Registry", "registered instance %s for template %s", id, tmpl)
//	logging.Error("Router", err, "dispatch to %s failed", instanceID)
//
// # Audit events
//
// Security-sensitive operations (token issuance, auth failures, admin
// mutations) are logged through Audit, which always logs at Info level with
// a distinct "[AUDIT]" prefix so log shippers can route these events to a
// separate sink.
package logging
