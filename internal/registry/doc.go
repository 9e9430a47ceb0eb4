// Package registry implements the Registry Store: the gateway's
// in-memory catalogue of templates and instances, the sole owner of that
// state, and the durable-persistence layer backing it.
//
// # Ownership
//
// Every Template and Instance record lives in a Store. Every other
// component — load balancer, health checker, router, HTTP front end —
// holds only copies obtained through Store's query methods; a caller that
// wants a field mutated calls a Store method, never mutates the struct it
// was handed.
//
// # Persistence
//
// A Store is constructed with a PersistLayer, which is either a relational
// implementation (SQLPersistence, backed by database/sql) or a
// file-snapshot implementation (FileSnapshotPersistence, an atomically
// rewritten JSON document) — never both at once, per the design
// note on dual persistence. Every mutation triggers a snapshot; snapshot
// failures are logged and surfaced to the caller without corrupting the
// in-memory state.
//
// # Concurrency
//
// All mutation methods serialize on a single exclusive lock; query methods
// take a shared lock and return copies, so a caller can inspect an Instance
// after the call returns without holding the Store's lock open.
package registry
