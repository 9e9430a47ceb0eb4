// Package backend defines the Backend Driver collaborator contract the
// Request Router consults for its stdio fallback path. Instance lifecycle
// management (deploying, scaling, tearing down backend processes) is
// explicitly out of scope; the gateway only ever asks whether a template
// supports stdio fallback at all.
package backend
