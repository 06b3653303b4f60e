package resolve_test

import (
	"errors"
	"testing"

	"patchforge/internal/catalog"
	"patchforge/internal/detection"
	"patchforge/internal/provenance"
	"patchforge/internal/resolve"
	"patchforge/internal/services"
	"patchforge/internal/testsupport"
)

func detected(t *testing.T, index int, brand, model string, category catalog.Category, confidence float64) detection.Detected {
	t.Helper()
	name, err := provenance.Inferred(brand+" "+model, "test-model", confidence)
	if err != nil {
		t.Fatalf("inferred name: %v", err)
	}
	cat, err := provenance.Inferred(category, "test-model", confidence)
	if err != nil {
		t.Fatalf("inferred category: %v", err)
	}
	return detection.Detected{Index: index, Name: name, Category: cat, RawBrand: brand, RawModel: model}
}

func activeEntry(spec catalog.ModuleSpec, revision int) catalog.Entry {
	return catalog.Entry{
		Key:        catalog.KeyFor(spec.Brand, spec.Model),
		Revision:   revision,
		Status:     catalog.EntryActive,
		Provenance: provenance.Provenance{Origin: provenance.OriginManual, Source: "test"},
		Confidence: 1,
		Spec:       spec,
	}
}

func TestResolveExactKeyMatch(t *testing.T) {
	entries := []catalog.Entry{activeEntry(testsupport.OscillatorSpec(), 3)}
	detections := []detection.Detected{
		detected(t, 0, "testBRAND", "osc", catalog.CategoryOscillator, 0.9),
	}

	resolutions := resolve.Resolve(detections, entries)
	if len(resolutions) != 1 || !resolutions[0].Resolved() {
		t.Fatalf("resolutions = %+v", resolutions)
	}
	if ref := resolutions[0].Ref; ref.Key != "testbrand-osc" || ref.Revision != 3 {
		t.Fatalf("ref = %+v", ref)
	}
}

func TestResolveModelOnlyFallback(t *testing.T) {
	entries := []catalog.Entry{activeEntry(testsupport.FilterSpec(), 1)}
	detections := []detection.Detected{
		detected(t, 0, "", "Filter", catalog.CategoryFilter, 0.7),
	}

	resolutions := resolve.Resolve(detections, entries)
	if !resolutions[0].Resolved() {
		t.Fatalf("model-only match failed: %+v", resolutions[0])
	}
}

func TestResolveAmbiguousStaysUnresolved(t *testing.T) {
	a := testsupport.FilterSpec()
	b := testsupport.FilterSpec()
	b.Brand = "Otherbrand"
	entries := []catalog.Entry{activeEntry(a, 1), activeEntry(b, 1)}

	detections := []detection.Detected{
		detected(t, 0, "", "Filter", catalog.CategoryFilter, 0.7),
	}
	resolutions := resolve.Resolve(detections, entries)
	if resolutions[0].Resolved() {
		t.Fatalf("ambiguous detection was guessed: %+v", resolutions[0])
	}
	if len(resolutions[0].Ambiguous) != 2 {
		t.Fatalf("ambiguous candidates = %v", resolutions[0].Ambiguous)
	}
}

func TestResolveIgnoresDeprecatedEntries(t *testing.T) {
	entry := activeEntry(testsupport.VCASpec(), 2)
	entry.Status = catalog.EntryDeprecated
	detections := []detection.Detected{
		detected(t, 0, "Testbrand", "VCA", catalog.CategoryVCA, 0.8),
	}

	resolutions := resolve.Resolve(detections, []catalog.Entry{entry})
	if resolutions[0].Resolved() {
		t.Fatalf("deprecated entry resolved: %+v", resolutions[0])
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	entries := []catalog.Entry{
		activeEntry(testsupport.OscillatorSpec(), 1),
		activeEntry(testsupport.FilterSpec(), 1),
	}
	detections := []detection.Detected{
		detected(t, 0, "Testbrand", "Osc", catalog.CategoryOscillator, 0.9),
		detected(t, 1, "Nobody", "Nothing", catalog.CategoryUtility, 0.2),
	}

	first := resolve.Resolve(detections, entries)
	second := resolve.Resolve(detections, entries)
	for i := range first {
		if first[i].Resolved() != second[i].Resolved() {
			t.Fatalf("resolution %d differs across calls", i)
		}
		if first[i].Resolved() && *first[i].Ref != *second[i].Ref {
			t.Fatalf("resolution %d refs differ: %+v vs %+v", i, first[i].Ref, second[i].Ref)
		}
	}
}

func TestEnsureSynthesizesRevisionOne(t *testing.T) {
	detections := []detection.Detected{
		detected(t, 0, "Unknown", "Module X", catalog.CategoryUtility, 0.4),
	}
	resolutions := resolve.Resolve(detections, nil)

	result, err := resolve.Ensure(resolutions, nil)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if len(result.NewEntries) != 1 {
		t.Fatalf("new entries = %+v", result.NewEntries)
	}
	entry := result.NewEntries[0]
	if entry.Revision != 1 || entry.PrevRevision != 0 {
		t.Fatalf("entry revision chain = %d/%d", entry.Revision, entry.PrevRevision)
	}
	if entry.Key != "unknown-module-x" {
		t.Fatalf("entry key = %q", entry.Key)
	}
	if !result.Resolutions[0].Resolved() {
		t.Fatalf("resolution not closed: %+v", result.Resolutions[0])
	}
}

func TestEnsureProposesCorrectionRevision(t *testing.T) {
	head := activeEntry(testsupport.VCASpec(), 2)
	detections := []detection.Detected{
		detected(t, 0, "Testbrand", "VCA", catalog.CategoryMixer, 0.6),
	}
	// Force the unresolved path by resolving against an empty snapshot.
	resolutions := resolve.Resolve(detections, nil)

	result, err := resolve.Ensure(resolutions, []catalog.Entry{head})
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	entry := result.NewEntries[0]
	if entry.Revision != 3 || entry.PrevRevision != 2 {
		t.Fatalf("correction chain = %d/%d, want 3/2", entry.Revision, entry.PrevRevision)
	}
	if entry.Spec.Category != catalog.CategoryMixer {
		t.Fatalf("category = %q", entry.Spec.Category)
	}
	if len(entry.Spec.Ports) == 0 {
		t.Fatal("correction dropped the known port list")
	}
}

func TestEnsureMergesCompatibleDuplicates(t *testing.T) {
	detections := []detection.Detected{
		detected(t, 0, "Unknown", "Module X", catalog.CategoryUtility, 0.4),
		detected(t, 1, "unknown", "module  x", catalog.CategoryUtility, 0.7),
	}
	resolutions := resolve.Resolve(detections, nil)

	result, err := resolve.Ensure(resolutions, nil)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if len(result.NewEntries) != 1 {
		t.Fatalf("duplicates not merged: %+v", result.NewEntries)
	}
	if result.NewEntries[0].Confidence != 0.7 {
		t.Fatalf("merged confidence = %v, want 0.7", result.NewEntries[0].Confidence)
	}
	if !result.Resolutions[0].Resolved() || !result.Resolutions[1].Resolved() {
		t.Fatalf("resolutions not closed: %+v", result.Resolutions)
	}
	if *result.Resolutions[0].Ref != *result.Resolutions[1].Ref {
		t.Fatalf("duplicates reference different entries: %+v vs %+v",
			result.Resolutions[0].Ref, result.Resolutions[1].Ref)
	}
}

func TestEnsureConflictingDuplicatesFailWhole(t *testing.T) {
	detections := []detection.Detected{
		detected(t, 0, "Unknown", "Module X", catalog.CategoryFilter, 0.4),
		detected(t, 1, "Unknown", "Module X", catalog.CategoryOscillator, 0.7),
	}
	resolutions := resolve.Resolve(detections, nil)

	_, err := resolve.Ensure(resolutions, nil)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestUnresolvedRoundTripThroughCatalog(t *testing.T) {
	detections := []detection.Detected{
		detected(t, 0, "Unknown", "Module X", catalog.CategoryUtility, 0.4),
	}

	resolutions := resolve.Resolve(detections, nil)
	if resolutions[0].Resolved() {
		t.Fatalf("unknown module resolved against empty catalog")
	}

	result, err := resolve.Ensure(resolutions, nil)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	// Simulate the caller appending, then re-resolving against the snapshot.
	updated := result.NewEntries
	rerun := resolve.Resolve(detections, updated)
	if !rerun[0].Resolved() {
		t.Fatalf("detection still unresolved after append: %+v", rerun[0])
	}
	if rerun[0].Ref.Key != "unknown-module-x" || rerun[0].Ref.Revision != 1 {
		t.Fatalf("ref = %+v", rerun[0].Ref)
	}
}
