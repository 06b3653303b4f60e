package rig_test

import (
	"errors"
	"testing"

	"patchforge/internal/catalog"
	"patchforge/internal/provenance"
	"patchforge/internal/rig"
	"patchforge/internal/services"
	"patchforge/internal/testsupport"
)

func entries(specs ...catalog.ModuleSpec) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(specs))
	for _, spec := range specs {
		out = append(out, catalog.Entry{
			Key:        catalog.KeyFor(spec.Brand, spec.Model),
			Revision:   1,
			Status:     catalog.EntryActive,
			Provenance: provenance.Provenance{Origin: provenance.OriginManual, Source: "test"},
			Confidence: 1,
			Spec:       spec,
		})
	}
	return out
}

func declarations(specs ...catalog.ModuleSpec) []rig.Declaration {
	out := make([]rig.Declaration, 0, len(specs))
	for _, spec := range specs {
		out = append(out, rig.Declaration{Key: catalog.KeyFor(spec.Brand, spec.Model)})
	}
	return out
}

func TestAssembleAssignsPositionalIDs(t *testing.T) {
	osc, filter, vca := testsupport.OscillatorSpec(), testsupport.FilterSpec(), testsupport.VCASpec()
	spec := rig.Spec{RigID: "rig-1", Declarations: declarations(osc, filter, vca)}

	canonical, err := rig.Assemble(spec, entries(osc, filter, vca))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(canonical.Instances) != 3 {
		t.Fatalf("got %d instances, want 3", len(canonical.Instances))
	}
	for i, instance := range canonical.Instances {
		if instance.ID != i {
			t.Fatalf("instance %d has id %d", i, instance.ID)
		}
	}
	if canonical.Instances[1].Key != "testbrand-filter" {
		t.Fatalf("instance 1 key = %q", canonical.Instances[1].Key)
	}
}

func TestAssembleDerivesNormalledEdges(t *testing.T) {
	osc, filter := testsupport.OscillatorSpec(), testsupport.FilterSpec()
	spec := rig.Spec{RigID: "rig-1", Declarations: declarations(osc, filter)}

	canonical, err := rig.Assemble(spec, entries(osc, filter))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(canonical.Normals) != 1 {
		t.Fatalf("normals = %+v, want one edge", canonical.Normals)
	}
	edge := canonical.Normals[0]
	if edge.From != (rig.Endpoint{Instance: 0, Port: "Out"}) {
		t.Fatalf("edge from = %+v", edge.From)
	}
	if edge.To != (rig.Endpoint{Instance: 1, Port: "In"}) {
		t.Fatalf("edge to = %+v", edge.To)
	}
	if !edge.BreakOnInsert {
		t.Fatal("normalled edge is not break-on-insert")
	}
}

func TestAssembleOrderChangesNormals(t *testing.T) {
	osc, filter, lfo := testsupport.OscillatorSpec(), testsupport.FilterSpec(), testsupport.ModulatorSpec()

	forward := rig.Spec{RigID: "rig-1", Declarations: declarations(osc, filter)}
	canonical, err := rig.Assemble(forward, entries(osc, filter, lfo))
	if err != nil {
		t.Fatalf("Assemble forward: %v", err)
	}
	if len(canonical.Normals) != 1 {
		t.Fatalf("forward normals = %+v", canonical.Normals)
	}

	// The modulator has no audio input named "In", so putting it after the
	// oscillator leaves the oscillator's normal dangling.
	reordered := rig.Spec{RigID: "rig-1", Declarations: declarations(osc, lfo)}
	canonical, err = rig.Assemble(reordered, entries(osc, filter, lfo))
	if err != nil {
		t.Fatalf("Assemble reordered: %v", err)
	}
	if len(canonical.Normals) != 0 {
		t.Fatalf("reordered normals = %+v, want none", canonical.Normals)
	}
}

func TestAssembleEmptySpecFails(t *testing.T) {
	_, err := rig.Assemble(rig.Spec{RigID: "rig-1"}, nil)
	if !errors.Is(err, services.ErrAssembly) {
		t.Fatalf("empty spec: got %v, want assembly error", err)
	}
}

func TestAssembleUnknownKeyFails(t *testing.T) {
	spec := rig.Spec{RigID: "rig-1", Declarations: []rig.Declaration{{Key: "missing-module"}}}
	_, err := rig.Assemble(spec, entries(testsupport.OscillatorSpec()))
	if !errors.Is(err, services.ErrAssembly) {
		t.Fatalf("unknown key: got %v, want assembly error", err)
	}
}

func TestAssembleResolvesDeclarationNames(t *testing.T) {
	osc := testsupport.OscillatorSpec()
	spec := rig.Spec{RigID: "rig-1", Declarations: []rig.Declaration{
		{Name: provenance.Manual("Testbrand  OSC", "tester")},
	}}

	canonical, err := rig.Assemble(spec, entries(osc))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if canonical.Instances[0].Key != "testbrand-osc" {
		t.Fatalf("key = %q", canonical.Instances[0].Key)
	}
}
