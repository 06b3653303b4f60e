package testsupport

import (
	"context"
	"testing"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/provenance"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustAppend appends a first-revision entry for the spec and fails the test on error.
func MustAppend(t testing.TB, store *catalog.Store, spec catalog.ModuleSpec) catalog.Entry {
	t.Helper()

	entry := catalog.Entry{
		Key:        catalog.KeyFor(spec.Brand, spec.Model),
		Revision:   1,
		Status:     catalog.EntryActive,
		Provenance: provenance.Provenance{Origin: provenance.OriginManual, Source: "test"},
		Confidence: 1,
		Spec:       spec,
	}
	if err := store.Append(context.Background(), entry); err != nil {
		t.Fatalf("store.Append %s: %v", entry.Key, err)
	}
	return entry
}
