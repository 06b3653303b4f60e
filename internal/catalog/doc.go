// Package catalog persists canonical module specifications as an append-only,
// revisioned history in SQLite.
//
// Every entry is immutable once written: corrections append a new revision
// with a back-reference to its predecessor, and removal is a deprecated
// status on the latest revision. Append runs a compare-and-append check
// inside its transaction (guarded additionally by a file lock) so concurrent
// writers for the same key cannot both commit; Latest, History, and Find read
// from snapshots and never block writers.
//
// Treat this package as the single source of truth for catalog semantics;
// schema changes bump schemaVersion in schema.go.
package catalog
