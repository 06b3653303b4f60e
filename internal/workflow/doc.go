// Package workflow composes the pipeline stages into the operations the CLI
// exposes: photo ingestion, rig assembly with metrics, patch generation with
// validation, and layout suggestion. Stages run synchronously in data-flow
// order; the pipeline is the only place that writes to the catalog.
package workflow
