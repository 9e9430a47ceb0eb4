// Package router implements the Request Router: the single entry point
// that resolves a template/method/params/principal tuple into an MCP
// result, selecting a candidate instance via the Load Balancer, dispatching
// through the MCP Client Layer, retrying across instances on failure, and
// falling back to an ephemeral stdio session when a template has no
// registered instances at all.
//
// The router observes instance health but never mutates it — only the
// Health Checker writes through Registry.UpdateInstanceHealth. A failed
// dispatch only removes the instance from the router's own local
// candidate list for the remainder of that request.
package router
