// Package services holds cross-cutting helpers shared by every pipeline
// stage: the sentinel error taxonomy with Wrap for classification, and
// context annotations (rig id, stage, correlation id) consumed by logging.
//
// Every stage failure is tagged with exactly one sentinel so callers can
// decide retry policy with errors.Is rather than string matching.
package services
