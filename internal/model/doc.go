// Package model defines the value types shared by every gateway component:
// Template, Instance, LoadBalancerConfig, and the auth principal types.
// Beyond constructors and small value helpers (cloning, JSON encoding,
// weight and scope lookups), its only behavior is the invariant checks that every
// mutation path (registry, config loader, relational/JSON persistence) must
// run an Instance or Template through before it is accepted.
package model
