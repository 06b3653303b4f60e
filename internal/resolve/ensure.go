package resolve

import (
	"fmt"

	"patchforge/internal/catalog"
	"patchforge/internal/detection"
	"patchforge/internal/services"
)

// EnsureResult carries a fully-resolved resolution list plus the entries the
// caller must append to make those references real.
type EnsureResult struct {
	Resolutions []Resolution    `json:"resolutions"`
	NewEntries  []catalog.Entry `json:"new_entries"`
}

// Ensure synthesizes catalog entries for every unresolved detection. Entries
// are proposed, never written: the caller appends them, so this stage stays
// pure. A new key gets revision 1; a key already in the supplied entries gets
// a correction revision of head+1. Two unresolved detections that collapse to
// the same key must agree on category, otherwise the whole batch fails with a
// conflict naming both; agreeing duplicates share a single proposed entry.
func Ensure(resolutions []Resolution, entries []catalog.Entry) (EnsureResult, error) {
	heads := make(map[string]catalog.Entry, len(entries))
	for _, entry := range entries {
		heads[entry.Key] = entry
	}

	result := EnsureResult{Resolutions: make([]Resolution, len(resolutions))}
	copy(result.Resolutions, resolutions)

	proposed := make(map[string]int) // key -> index into result.NewEntries

	for i, resolution := range result.Resolutions {
		if resolution.Resolved() {
			continue
		}

		det := resolution.Detection
		key := catalog.KeyFor(det.Name.Value)
		if key == "" {
			return EnsureResult{}, services.Wrap(services.ErrValidation, "ensure", "synthesize",
				fmt.Sprintf("detection %d has no usable name", det.Index), nil)
		}

		if idx, ok := proposed[key]; ok {
			existing := &result.NewEntries[idx]
			if existing.Spec.Category != det.Category.Value {
				return EnsureResult{}, services.Wrap(services.ErrConflict, "ensure", "synthesize",
					fmt.Sprintf("key %s: detections disagree on category (%s vs %s)",
						key, existing.Spec.Category, det.Category.Value), nil)
			}
			if det.Name.Confidence > existing.Confidence {
				existing.Confidence = det.Name.Confidence
			}
			result.Resolutions[i].Ref = &Ref{Key: existing.Key, Revision: existing.Revision}
			result.Resolutions[i].Ambiguous = nil
			continue
		}

		entry := synthesizeEntry(key, det, heads)
		result.NewEntries = append(result.NewEntries, entry)
		proposed[key] = len(result.NewEntries) - 1
		result.Resolutions[i].Ref = &Ref{Key: entry.Key, Revision: entry.Revision}
		result.Resolutions[i].Ambiguous = nil
	}

	return result, nil
}

func synthesizeEntry(key string, det detection.Detected, heads map[string]catalog.Entry) catalog.Entry {
	revision := 1
	prev := 0
	var spec catalog.ModuleSpec
	if head, ok := heads[key]; ok {
		revision = head.Revision + 1
		prev = head.Revision
		// Correction revision: keep the known spec shape and refresh identity
		// fields from the detection.
		spec = head.Spec
	}

	if det.RawBrand != "" || det.RawModel != "" {
		spec.Brand = det.RawBrand
		spec.Model = det.RawModel
	} else if spec.Model == "" {
		spec.Model = det.Name.Value
	}
	spec.Category = det.Category.Value

	return catalog.Entry{
		Key:          key,
		Revision:     revision,
		PrevRevision: prev,
		Status:       catalog.EntryActive,
		Provenance:   det.Name.Provenance,
		Confidence:   det.Name.Confidence,
		Spec:         spec,
	}
}
