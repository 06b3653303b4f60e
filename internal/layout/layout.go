// Package layout proposes deterministic rack placements for a canonical rig.
// A profile selects the scoring heuristic, the seed settles scoring jitter,
// and remaining ties fall back to instance id ascending, so the same rig,
// profile, and seed always produce the identical suggestion.
package layout

import (
	"fmt"
	"sort"

	"patchforge/internal/catalog"
	"patchforge/internal/rig"
	"patchforge/internal/seed"
	"patchforge/internal/services"
)

// Profile selects the placement scoring heuristic.
type Profile string

const (
	// ProfilePerformer keeps hands-on modules (clocks, sequencers,
	// envelopes) at the front of the rack.
	ProfilePerformer Profile = "performer"
	// ProfileStudio orders modules by signal flow: sources first, then
	// processing, then modulation and utilities.
	ProfileStudio Profile = "studio"
	// ProfileMinimal packs narrow modules first to minimize stranded space.
	ProfileMinimal Profile = "minimal"
)

// ParseProfile validates a profile label.
func ParseProfile(raw string) (Profile, error) {
	switch Profile(raw) {
	case ProfilePerformer, ProfileStudio, ProfileMinimal:
		return Profile(raw), nil
	default:
		return "", services.Wrap(services.ErrValidation, "layout", "profile",
			fmt.Sprintf("unknown profile %q", raw), nil)
	}
}

// Placement assigns one instance a row and a horizontal offset within it.
type Placement struct {
	Instance int    `json:"instance"`
	Key      string `json:"key"`
	Row      int    `json:"row"`
	OffsetHP int    `json:"offset_hp"`
	WidthHP  int    `json:"width_hp"`
}

// Suggestion is a complete layout: exactly one placement per instance,
// ordered by row then offset. It records the seed that produced it so
// exploratory runs can be reproduced.
type Suggestion struct {
	RigID      string      `json:"rig_id"`
	Profile    Profile     `json:"profile"`
	Seed       seed.Seed   `json:"seed"`
	RowWidthHP int         `json:"row_width_hp"`
	Placements []Placement `json:"placements"`
}

// Suggest computes a layout for the rig. Instances are ranked by the
// profile's category score plus seeded jitter, then packed first-fit into
// rows of rowWidthHP. Every instance is placed; none are omitted.
func Suggest(canonical rig.Canonical, profile Profile, s seed.Seed, rowWidthHP int) (Suggestion, error) {
	if _, err := ParseProfile(string(profile)); err != nil {
		return Suggestion{}, err
	}
	if s == "" {
		return Suggestion{}, services.Wrap(services.ErrValidation, "layout", "suggest", "seed is required", nil)
	}
	if len(canonical.Instances) == 0 {
		return Suggestion{}, services.Wrap(services.ErrValidation, "layout", "suggest",
			fmt.Sprintf("rig %s has no instances", canonical.RigID), nil)
	}
	if rowWidthHP <= 0 {
		rowWidthHP = 104
	}
	for _, instance := range canonical.Instances {
		if instance.Spec.WidthHP > rowWidthHP {
			return Suggestion{}, services.Wrap(services.ErrValidation, "layout", "suggest",
				fmt.Sprintf("instance %d (%s) is wider than a row (%d > %d hp)",
					instance.ID, instance.Key, instance.Spec.WidthHP, rowWidthHP), nil)
		}
	}

	rng := seed.Source(seed.Derive(s, "layout", 0))

	type ranked struct {
		instance rig.Instance
		score    int
	}
	order := make([]ranked, 0, len(canonical.Instances))
	// Jitter draws happen in instance id order so the seed alone fixes them.
	for _, instance := range canonical.Instances {
		jitter := int(rng.Uint64() % 1000)
		order = append(order, ranked{
			instance: instance,
			score:    categoryScore(profile, instance.Spec)*1000 + jitter,
		})
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].score != order[j].score {
			return order[i].score > order[j].score
		}
		return order[i].instance.ID < order[j].instance.ID
	})

	suggestion := Suggestion{
		RigID:      canonical.RigID,
		Profile:    profile,
		Seed:       s,
		RowWidthHP: rowWidthHP,
	}

	var rowUsed []int
	for _, r := range order {
		width := r.instance.Spec.WidthHP
		row := -1
		for i, used := range rowUsed {
			if used+width <= rowWidthHP {
				row = i
				break
			}
		}
		if row == -1 {
			rowUsed = append(rowUsed, 0)
			row = len(rowUsed) - 1
		}
		suggestion.Placements = append(suggestion.Placements, Placement{
			Instance: r.instance.ID,
			Key:      r.instance.Key,
			Row:      row,
			OffsetHP: rowUsed[row],
			WidthHP:  width,
		})
		rowUsed[row] += width
	}

	sort.Slice(suggestion.Placements, func(i, j int) bool {
		a, b := suggestion.Placements[i], suggestion.Placements[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.OffsetHP < b.OffsetHP
	})
	return suggestion, nil
}

func categoryScore(profile Profile, spec catalog.ModuleSpec) int {
	switch profile {
	case ProfilePerformer:
		switch {
		case spec.Category == catalog.CategorySequencer || spec.Category == catalog.CategoryClock:
			return 5
		case spec.Category == catalog.CategoryEnvelope || spec.Category == catalog.CategoryLFO:
			return 4
		case spec.Category.IsSource():
			return 3
		case spec.Category.IsProcessing():
			return 2
		default:
			return 1
		}
	case ProfileMinimal:
		// Narrow modules first; width dominates category.
		return 100 - spec.WidthHP
	default: // studio
		switch {
		case spec.Category.IsSource():
			return 5
		case spec.Category.IsProcessing():
			return 4
		case spec.Category.IsModulation():
			return 3
		default:
			return 1
		}
	}
}
