// Package resolve binds detections to catalog entries and proposes new
// entries for anything the catalog has never seen.
//
// Resolution is exact: normalized-identity key equality first, then a
// single-candidate model match. Anything ambiguous stays unresolved with the
// competing keys attached. The ensurer closes the loop by synthesizing
// revision-1 entries (or correction revisions) for unresolved detections, but
// it only proposes — the caller owns the catalog append.
package resolve
