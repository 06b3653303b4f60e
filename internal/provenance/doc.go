// Package provenance wraps uncertain values with their origin, confidence,
// and review status so downstream consumers can distinguish fact from
// inference.
//
// Every later pipeline stage builds on these types: detections carry
// provenanced names and categories, synthesized catalog entries record the
// inference that minted them, and manual corrections arrive as confirmed
// values. Values are immutable; Merge resolves competing observations of the
// same field deterministically.
package provenance
