// Package mcpclient is the MCP Client Layer: a uniform "call MCP method"
// interface hiding whether a backend instance speaks HTTP or stdio MCP.
// It wraps github.com/mark3labs/mcp-go's client package for both stdio and
// streamable-HTTP transports.
//
// Three operations are exposed:
//   - DispatchHTTP (a package function) opens a fresh session per call
//     against a remote endpoint.
//   - Dispatcher.DispatchStdio acquires a subprocess from a per-template
//     bounded pool, uses it for one call, and returns it.
//   - DispatchStdioEphemeral (a package function) spawns, uses, and tears down a
//     stdio subprocess for exactly one call — the router's fallback path
//     for templates with no registered instances.
package mcpclient
