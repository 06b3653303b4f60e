package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"patchforge/internal/catalog"
	"patchforge/internal/detection"
	"patchforge/internal/layout"
	"patchforge/internal/metrics"
	"patchforge/internal/patch"
	"patchforge/internal/services/vision"
	"patchforge/internal/testsupport"
	"patchforge/internal/workflow"
)

type fakeCapability struct {
	observations []vision.Observation
}

func (f *fakeCapability) InferModules(context.Context, []byte, string) ([]vision.Observation, error) {
	return f.observations, nil
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rack.jpg")
	if err := os.WriteFile(path, []byte("\xff\xd8\xff\xe0 not really a jpeg"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return path
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := catalog.Seed(ctx, store); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	capability := &fakeCapability{observations: []vision.Observation{
		{Brand: "Mutable Instruments", Model: "Plaits", Category: "oscillator", Confidence: 0.95},
		{Brand: "Mutable Instruments", Model: "Ripples", Category: "filter", Confidence: 0.9},
		{Brand: "Obscure", Model: "Widget", Category: "utility", Confidence: 0.3},
	}}
	detector := detection.NewDetector(capability, "test-model", nil)
	pipeline := workflow.New(cfg, store, detector, nil)

	ingested, err := pipeline.IngestPhoto(ctx, "rig-1", writePhoto(t))
	if err != nil {
		t.Fatalf("IngestPhoto: %v", err)
	}
	if len(ingested.RigSpec.Declarations) != 3 {
		t.Fatalf("declarations = %d, want 3", len(ingested.RigSpec.Declarations))
	}
	if len(ingested.Appended) != 1 {
		t.Fatalf("appended = %+v, want the one unknown module", ingested.Appended)
	}
	if ingested.Appended[0].Key != "obscure-widget" || ingested.Appended[0].Revision != 1 {
		t.Fatalf("appended entry = %+v", ingested.Appended[0])
	}

	// The synthesized module lacks width and power, so assembly of the full
	// spec fails metrics. Assemble just the known modules.
	spec := ingested.RigSpec
	spec.Declarations = spec.Declarations[:2]
	canonical, values, err := pipeline.AssembleRig(ctx, spec)
	if err != nil {
		t.Fatalf("AssembleRig: %v", err)
	}
	if len(canonical.Instances) != 2 {
		t.Fatalf("instances = %d", len(canonical.Instances))
	}
	if values[metrics.MetricModuleCount] != 2 {
		t.Fatalf("module count metric = %v", values[metrics.MetricModuleCount])
	}

	generated, err := pipeline.GeneratePatch(ctx, canonical, patch.IntentAmbient, "seed-a", 1)
	if err != nil {
		t.Fatalf("GeneratePatch: %v", err)
	}
	if generated.Seed != "seed-a" {
		t.Fatalf("seed = %s", generated.Seed)
	}
	if len(generated.Validations) != 2 {
		t.Fatalf("validations = %d, want 2", len(generated.Validations))
	}

	suggestion, err := pipeline.SuggestLayout(ctx, canonical, layout.ProfileStudio, "")
	if err != nil {
		t.Fatalf("SuggestLayout: %v", err)
	}
	if suggestion.Seed == "" {
		t.Fatal("synthesized seed not reported")
	}
	if len(suggestion.Placements) != 2 {
		t.Fatalf("placements = %d", len(suggestion.Placements))
	}
}

func TestIngestPhotoIsRepeatableAgainstGrownCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	capability := &fakeCapability{observations: []vision.Observation{
		{Brand: "Obscure", Model: "Widget", Category: "utility", Confidence: 0.3},
	}}
	detector := detection.NewDetector(capability, "test-model", nil)
	pipeline := workflow.New(cfg, store, detector, nil)
	photo := writePhoto(t)

	first, err := pipeline.IngestPhoto(ctx, "rig-1", photo)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if len(first.Appended) != 1 {
		t.Fatalf("first ingest appended %d entries", len(first.Appended))
	}

	// Second pass resolves against the now-grown catalog and appends nothing.
	second, err := pipeline.IngestPhoto(ctx, "rig-1", photo)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if len(second.Appended) != 0 {
		t.Fatalf("second ingest appended %+v", second.Appended)
	}
	if second.RigSpec.Declarations[0].Key != "obscure-widget" {
		t.Fatalf("declaration key = %q", second.RigSpec.Declarations[0].Key)
	}
}
