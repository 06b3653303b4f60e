package layout_test

import (
	"errors"
	"reflect"
	"testing"

	"patchforge/internal/catalog"
	"patchforge/internal/layout"
	"patchforge/internal/provenance"
	"patchforge/internal/rig"
	"patchforge/internal/services"
	"patchforge/internal/testsupport"
)

func assembled(t *testing.T, specs ...catalog.ModuleSpec) rig.Canonical {
	t.Helper()
	entries := make([]catalog.Entry, 0, len(specs))
	decls := make([]rig.Declaration, 0, len(specs))
	for _, spec := range specs {
		key := catalog.KeyFor(spec.Brand, spec.Model)
		entries = append(entries, catalog.Entry{
			Key: key, Revision: 1, Status: catalog.EntryActive,
			Provenance: provenance.Provenance{Origin: provenance.OriginManual, Source: "test"},
			Confidence: 1, Spec: spec,
		})
		decls = append(decls, rig.Declaration{Key: key})
	}
	canonical, err := rig.Assemble(rig.Spec{RigID: "rig-1", Declarations: decls}, entries)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return canonical
}

func TestSuggestPlacesEveryInstanceOnce(t *testing.T) {
	canonical := assembled(t,
		testsupport.OscillatorSpec(), testsupport.FilterSpec(),
		testsupport.VCASpec(), testsupport.ModulatorSpec(), testsupport.PassiveMultSpec())

	suggestion, err := layout.Suggest(canonical, layout.ProfileStudio, "seed-a", 104)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	seen := map[int]bool{}
	for _, placement := range suggestion.Placements {
		if seen[placement.Instance] {
			t.Fatalf("instance %d placed twice", placement.Instance)
		}
		seen[placement.Instance] = true
	}
	if len(seen) != len(canonical.Instances) {
		t.Fatalf("placed %d of %d instances", len(seen), len(canonical.Instances))
	}
}

func TestSuggestDeterministicPerSeed(t *testing.T) {
	canonical := assembled(t,
		testsupport.OscillatorSpec(), testsupport.FilterSpec(), testsupport.VCASpec())

	first, err := layout.Suggest(canonical, layout.ProfilePerformer, "seed-a", 104)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	second, err := layout.Suggest(canonical, layout.ProfilePerformer, "seed-a", 104)
	if err != nil {
		t.Fatalf("Suggest again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed diverged:\n%+v\n%+v", first, second)
	}
}

func TestSuggestRespectsRowWidth(t *testing.T) {
	canonical := assembled(t,
		testsupport.OscillatorSpec(), testsupport.FilterSpec(),
		testsupport.VCASpec(), testsupport.ModulatorSpec())

	suggestion, err := layout.Suggest(canonical, layout.ProfileMinimal, "seed-a", 16)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	rowUsed := map[int]int{}
	for _, placement := range suggestion.Placements {
		if placement.OffsetHP != rowUsed[placement.Row] {
			t.Fatalf("placement %+v does not abut previous module (row used %d)", placement, rowUsed[placement.Row])
		}
		rowUsed[placement.Row] += placement.WidthHP
		if rowUsed[placement.Row] > 16 {
			t.Fatalf("row %d overflows: %d hp", placement.Row, rowUsed[placement.Row])
		}
	}
}

func TestSuggestRejectsBadInput(t *testing.T) {
	canonical := assembled(t, testsupport.OscillatorSpec())

	if _, err := layout.Suggest(canonical, "arena", "seed-a", 104); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unknown profile: got %v, want validation error", err)
	}
	if _, err := layout.Suggest(canonical, layout.ProfileStudio, "", 104); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing seed: got %v, want validation error", err)
	}
	if _, err := layout.Suggest(canonical, layout.ProfileStudio, "seed-a", 4); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("module wider than row: got %v, want validation error", err)
	}
	if _, err := layout.Suggest(rig.Canonical{RigID: "rig-1"}, layout.ProfileStudio, "seed-a", 104); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty rig: got %v, want validation error", err)
	}
}
