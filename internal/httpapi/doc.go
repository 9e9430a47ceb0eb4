// Package httpapi is the Gateway Front-End: the net/http surface that
// decodes requests, runs them through the Auth Gate, hands MCP calls to the
// Request Router, and translates router.Error.Kind into an HTTP status.
// It owns no MCP or load-balancing logic of its own — every route here is
// a thin adapter over the packages it composes.
package httpapi
