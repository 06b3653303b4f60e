// Package logging assembles structured slog loggers and formatting helpers
// used across the patchforge pipeline.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code automatically tags log
// lines with rig IDs, stages, and correlation IDs. A no-op logger is
// available for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
