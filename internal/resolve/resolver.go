package resolve

import (
	"sort"
	"strings"

	"patchforge/internal/catalog"
	"patchforge/internal/detection"
)

// Ref points at one concrete catalog revision.
type Ref struct {
	Key      string `json:"key"`
	Revision int    `json:"revision"`
}

// Resolution is the outcome for one detection: a concrete catalog reference,
// or unresolved. Ambiguous matches stay unresolved and carry the candidate
// keys so the caller can surface them; the resolver never guesses.
type Resolution struct {
	Detection detection.Detected `json:"detection"`
	Ref       *Ref               `json:"ref,omitempty"`
	Ambiguous []string           `json:"ambiguous,omitempty"`
}

// Resolved reports whether the detection was bound to a catalog entry.
func (r Resolution) Resolved() bool {
	return r.Ref != nil
}

// Resolve matches each detection against the supplied latest catalog entries.
// The primary rule is normalized-identity key equality; when that misses, a
// detection whose normalized model matches exactly one entry's model resolves
// to it, and multiple model matches are reported as ambiguous. Deprecated
// entries never match. Pure function of its inputs.
func Resolve(detections []detection.Detected, entries []catalog.Entry) []Resolution {
	byKey := make(map[string]catalog.Entry, len(entries))
	byModel := make(map[string][]catalog.Entry)
	for _, entry := range entries {
		if entry.Status != catalog.EntryActive {
			continue
		}
		byKey[entry.Key] = entry
		if model := catalog.Normalize(entry.Spec.Model); model != "" {
			byModel[model] = append(byModel[model], entry)
		}
	}

	resolutions := make([]Resolution, 0, len(detections))
	for _, det := range detections {
		resolutions = append(resolutions, resolveOne(det, byKey, byModel))
	}
	return resolutions
}

func resolveOne(det detection.Detected, byKey map[string]catalog.Entry, byModel map[string][]catalog.Entry) Resolution {
	resolution := Resolution{Detection: det}

	key := catalog.KeyFor(det.Name.Value)
	if key == "" {
		return resolution
	}
	if entry, ok := byKey[key]; ok {
		resolution.Ref = &Ref{Key: entry.Key, Revision: entry.Revision}
		return resolution
	}

	model := catalog.Normalize(det.RawModel)
	if model == "" {
		model = catalog.Normalize(det.Name.Value)
	}
	candidates := byModel[model]
	switch len(candidates) {
	case 0:
		return resolution
	case 1:
		resolution.Ref = &Ref{Key: candidates[0].Key, Revision: candidates[0].Revision}
		return resolution
	default:
		keys := make([]string, 0, len(candidates))
		for _, candidate := range candidates {
			keys = append(keys, candidate.Key)
		}
		sort.Strings(keys)
		resolution.Ambiguous = keys
		return resolution
	}
}

// UnresolvedNames lists the display names of every unresolved detection,
// in detection order.
func UnresolvedNames(resolutions []Resolution) []string {
	var names []string
	for _, resolution := range resolutions {
		if resolution.Resolved() {
			continue
		}
		name := strings.TrimSpace(resolution.Detection.Name.Value)
		if name == "" {
			name = "(unnamed)"
		}
		names = append(names, name)
	}
	return names
}
