// Package app bootstraps the gateway process: it loads configuration,
// wires every component (Registry Store, Load Balancer, Health Checker,
// MCP Client Layer, Auth Gate, Request Router, Gateway Front-End, metrics)
// together, and runs them until the context passed to Run is cancelled.
//
// Application follows a two-phase shape: NewApplication performs the
// bootstrap phase (load config, construct services), and Run performs the
// execution phase (start the HTTP listener, health-check loop, and config
// watcher, and block until shutdown).
package app
