package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/detection"
	"patchforge/internal/layout"
	"patchforge/internal/logging"
	"patchforge/internal/metrics"
	"patchforge/internal/patch"
	"patchforge/internal/resolve"
	"patchforge/internal/rig"
	"patchforge/internal/seed"
	"patchforge/internal/services"
)

// Pipeline runs the stages end to end: detect, resolve, ensure, assemble,
// and generate. Each stage stays a pure function; the pipeline owns the only
// side effects (catalog appends) and the logging around them.
type Pipeline struct {
	cfg      *config.Config
	store    *catalog.Store
	detector *detection.Detector
	logger   *slog.Logger
}

// New wires a pipeline. The detector may be nil when photo ingestion is not
// needed (e.g., rigs declared by hand).
func New(cfg *config.Config, store *catalog.Store, detector *detection.Detector, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		detector: detector,
		logger:   logging.NewComponentLogger(logger, "workflow"),
	}
}

// IngestResult reports one photo ingestion: the sightings, how each one
// resolved, and the entries appended on the rig's behalf.
type IngestResult struct {
	Detection   detection.Detection  `json:"detection"`
	Resolutions []resolve.Resolution `json:"resolutions"`
	Appended    []catalog.Entry      `json:"appended"`
	RigSpec     rig.Spec             `json:"rig_spec"`
}

// IngestPhoto detects modules in a photo, resolves them against the catalog,
// appends synthesized entries for anything unknown, and returns a rig spec
// declaring the detected modules in photo order.
func (p *Pipeline) IngestPhoto(ctx context.Context, rigID, photoPath string) (IngestResult, error) {
	if p.detector == nil {
		return IngestResult{}, services.Wrap(services.ErrInference, "workflow", "ingest", "no detector configured", nil)
	}
	ctx = services.WithRigID(ctx, rigID)
	ctx = services.WithStage(ctx, "ingest")

	detected, err := p.detector.DetectFile(ctx, photoPath)
	if err != nil {
		return IngestResult{}, err
	}

	snapshot, err := p.store.AllLatest(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("catalog snapshot: %w", err)
	}

	resolutions := resolve.Resolve(detected.Modules, snapshot)
	ensured, err := resolve.Ensure(resolutions, snapshot)
	if err != nil {
		return IngestResult{}, err
	}

	for _, entry := range ensured.NewEntries {
		if err := p.store.Append(ctx, entry); err != nil {
			return IngestResult{}, fmt.Errorf("append %s: %w", entry.Key, err)
		}
		p.logger.InfoContext(ctx, "catalog entry synthesized",
			logging.String("key", entry.Key),
			logging.Int("revision", entry.Revision))
	}

	result := IngestResult{
		Detection:   detected,
		Resolutions: ensured.Resolutions,
		Appended:    ensured.NewEntries,
		RigSpec:     rig.Spec{RigID: rigID},
	}
	for _, resolution := range ensured.Resolutions {
		result.RigSpec.Declarations = append(result.RigSpec.Declarations,
			rig.Declaration{Key: resolution.Ref.Key, Name: resolution.Detection.Name})
	}

	p.logger.InfoContext(ctx, "photo ingested",
		logging.String("batch_id", detected.BatchID),
		logging.Int("modules", len(result.RigSpec.Declarations)),
		logging.Int("new_entries", len(ensured.NewEntries)))
	return result, nil
}

// AssembleRig resolves a rig spec's keys against the catalog and builds the
// canonical rig plus its metrics.
func (p *Pipeline) AssembleRig(ctx context.Context, spec rig.Spec) (rig.Canonical, map[string]float64, error) {
	ctx = services.WithRigID(ctx, spec.RigID)
	ctx = services.WithStage(ctx, "assemble")

	entries := make([]catalog.Entry, 0, len(spec.Declarations))
	seen := make(map[string]bool)
	for _, decl := range spec.Declarations {
		key := decl.Key
		if key == "" {
			key = catalog.KeyFor(decl.Name.Value)
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		entry, err := p.store.Latest(ctx, key)
		if err != nil {
			return rig.Canonical{}, nil, err
		}
		entries = append(entries, entry)
	}

	canonical, err := rig.Assemble(spec, entries)
	if err != nil {
		return rig.Canonical{}, nil, err
	}
	values, err := metrics.Map(canonical)
	if err != nil {
		return rig.Canonical{}, nil, err
	}

	p.logger.InfoContext(ctx, "rig assembled",
		logging.Int("instances", len(canonical.Instances)),
		logging.Int("normals", len(canonical.Normals)),
		logging.Float64("width_hp", values[metrics.MetricWidthHP]))
	return canonical, values, nil
}

// GenerateResult is a generated patch with its validation outcomes, one per
// graph (primary first, then variations).
type GenerateResult struct {
	Seed        seed.Seed          `json:"seed"`
	Patch       patch.Result       `json:"patch"`
	Validations []patch.Validation `json:"validations"`
}

// GeneratePatch generates and validates a patch for the rig. An empty seed
// synthesizes one; it is reported in the result so the run can be reproduced.
func (p *Pipeline) GeneratePatch(ctx context.Context, canonical rig.Canonical, intent patch.Intent, s seed.Seed, variations int) (GenerateResult, error) {
	ctx = services.WithRigID(ctx, canonical.RigID)
	ctx = services.WithStage(ctx, "generate")

	if s == "" {
		s = seed.Synthesize()
		p.logger.InfoContext(ctx, "seed synthesized", logging.String("seed", string(s)))
	}

	result, err := patch.Generate(canonical, intent, s, variations)
	if err != nil {
		return GenerateResult{}, err
	}

	out := GenerateResult{Seed: s, Patch: result}
	out.Validations = append(out.Validations, patch.Validate(result.Graph, canonical))
	for _, variation := range result.Variations {
		out.Validations = append(out.Validations, patch.Validate(variation, canonical))
	}

	p.logger.InfoContext(ctx, "patch generated",
		logging.String("patch_id", result.Graph.PatchID),
		logging.Int("variations", len(result.Variations)),
		logging.String("state", string(out.Validations[0].State)))
	return out, nil
}

// SuggestLayout produces a placement suggestion for the rig. An empty seed
// synthesizes one, reported in the suggestion.
func (p *Pipeline) SuggestLayout(ctx context.Context, canonical rig.Canonical, profile layout.Profile, s seed.Seed) (layout.Suggestion, error) {
	ctx = services.WithRigID(ctx, canonical.RigID)
	ctx = services.WithStage(ctx, "layout")

	if s == "" {
		s = seed.Synthesize()
	}
	suggestion, err := layout.Suggest(canonical, profile, s, p.cfg.Generation.RowWidthHP)
	if err != nil {
		return layout.Suggestion{}, err
	}
	p.logger.InfoContext(ctx, "layout suggested",
		logging.Int("placements", len(suggestion.Placements)))
	return suggestion, nil
}
