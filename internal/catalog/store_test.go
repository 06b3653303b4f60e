package catalog_test

import (
	"context"
	"errors"
	"testing"

	"patchforge/internal/catalog"
	"patchforge/internal/provenance"
	"patchforge/internal/services"
	"patchforge/internal/testsupport"
)

func entryFor(spec catalog.ModuleSpec, revision, prev int) catalog.Entry {
	return catalog.Entry{
		Key:          catalog.KeyFor(spec.Brand, spec.Model),
		Revision:     revision,
		PrevRevision: prev,
		Status:       catalog.EntryActive,
		Provenance:   provenance.Provenance{Origin: provenance.OriginManual, Source: "test"},
		Confidence:   1,
		Spec:         spec,
	}
}

func TestAppendRevisionChain(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	spec := testsupport.OscillatorSpec()

	if err := store.Append(ctx, entryFor(spec, 1, 0)); err != nil {
		t.Fatalf("append revision 1: %v", err)
	}

	err := store.Append(ctx, entryFor(spec, 1, 0))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("second revision 1 append: got %v, want conflict", err)
	}

	corrected := spec
	corrected.WidthHP = 12
	if err := store.Append(ctx, entryFor(corrected, 2, 1)); err != nil {
		t.Fatalf("append revision 2: %v", err)
	}

	latest, err := store.Latest(ctx, catalog.KeyFor(spec.Brand, spec.Model))
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Revision != 2 || latest.Spec.WidthHP != 12 {
		t.Fatalf("latest = revision %d width %d, want revision 2 width 12", latest.Revision, latest.Spec.WidthHP)
	}
}

func TestAppendRejectsBadBackReference(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	spec := testsupport.FilterSpec()

	if err := store.Append(ctx, entryFor(spec, 1, 0)); err != nil {
		t.Fatalf("append revision 1: %v", err)
	}

	err := store.Append(ctx, entryFor(spec, 2, 0))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("revision 2 with back-reference 0: got %v, want conflict", err)
	}

	err = store.Append(ctx, entryFor(spec, 3, 1))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("revision 3 on head 1: got %v, want conflict", err)
	}
}

func TestAppendValidation(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	entry := entryFor(testsupport.VCASpec(), 1, 0)
	entry.Key = "Testbrand VCA"
	if err := store.Append(ctx, entry); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("denormalized key: got %v, want validation error", err)
	}

	entry = entryFor(testsupport.VCASpec(), 1, 0)
	entry.Confidence = 1.5
	if err := store.Append(ctx, entry); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("confidence 1.5: got %v, want validation error", err)
	}

	entry = entryFor(testsupport.VCASpec(), 0, 0)
	if err := store.Append(ctx, entry); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("revision 0: got %v, want validation error", err)
	}
}

func TestLatestMissingKey(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	_, err := store.Latest(context.Background(), "no-such-module")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("latest on missing key: got %v, want not found", err)
	}
}

func TestHistoryChain(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	spec := testsupport.OscillatorSpec()
	key := catalog.KeyFor(spec.Brand, spec.Model)

	for rev := 1; rev <= 3; rev++ {
		if err := store.Append(ctx, entryFor(spec, rev, rev-1)); err != nil {
			t.Fatalf("append revision %d: %v", rev, err)
		}
	}

	var revisions []int
	for entry, err := range store.History(ctx, key) {
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if entry.PrevRevision != entry.Revision-1 {
			t.Fatalf("revision %d back-references %d", entry.Revision, entry.PrevRevision)
		}
		revisions = append(revisions, entry.Revision)
	}
	if len(revisions) != 3 || revisions[0] != 1 || revisions[2] != 3 {
		t.Fatalf("history revisions = %v, want [1 2 3]", revisions)
	}
}

func TestHistoryRestartsObserveNewAppends(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	spec := testsupport.ModulatorSpec()
	key := catalog.KeyFor(spec.Brand, spec.Model)

	if err := store.Append(ctx, entryFor(spec, 1, 0)); err != nil {
		t.Fatalf("append revision 1: %v", err)
	}

	history := store.History(ctx, key)
	count := 0
	for _, err := range history {
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("first pass saw %d entries, want 1", count)
	}

	if err := store.Append(ctx, entryFor(spec, 2, 1)); err != nil {
		t.Fatalf("append revision 2: %v", err)
	}

	count = 0
	for _, err := range history {
		if err != nil {
			t.Fatalf("history second pass: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("second pass saw %d entries, want 2", count)
	}
}

func TestFindSeesOnlyLatestRevisions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	osc := testsupport.OscillatorSpec()
	if err := store.Append(ctx, entryFor(osc, 1, 0)); err != nil {
		t.Fatalf("append oscillator: %v", err)
	}

	reclassified := osc
	reclassified.Category = catalog.CategoryNoise
	if err := store.Append(ctx, entryFor(reclassified, 2, 1)); err != nil {
		t.Fatalf("append revision 2: %v", err)
	}
	testsupport.MustAppend(t, store, testsupport.FilterSpec())

	oscillators, err := store.Find(ctx, func(e catalog.Entry) bool {
		return e.Spec.Category == catalog.CategoryOscillator
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(oscillators) != 0 {
		t.Fatalf("superseded revision visible to find: %+v", oscillators)
	}

	noise, err := store.Find(ctx, func(e catalog.Entry) bool {
		return e.Spec.Category == catalog.CategoryNoise
	})
	if err != nil {
		t.Fatalf("find noise: %v", err)
	}
	if len(noise) != 1 || noise[0].Revision != 2 {
		t.Fatalf("find noise = %+v, want single revision 2 entry", noise)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	added, err := catalog.Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if added != len(catalog.StarterSpecs()) {
		t.Fatalf("first seed added %d, want %d", added, len(catalog.StarterSpecs()))
	}

	added, err = catalog.Seed(ctx, store)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if added != 0 {
		t.Fatalf("second seed added %d, want 0", added)
	}

	keys, revisions, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if keys != len(catalog.StarterSpecs()) || revisions != keys {
		t.Fatalf("stats = %d keys %d revisions, want %d of each", keys, revisions, len(catalog.StarterSpecs()))
	}
}

func TestKeyForCollapsesVariants(t *testing.T) {
	a := catalog.KeyFor("Make Noise", "Maths")
	b := catalog.KeyFor("make  NOISE maths")
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if a != "make-noise-maths" {
		t.Fatalf("key = %q, want make-noise-maths", a)
	}
}
