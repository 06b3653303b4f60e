package patch_test

import (
	"reflect"
	"testing"

	"patchforge/internal/patch"
	"patchforge/internal/rig"
	"patchforge/internal/testsupport"
)

// chainGraph builds a handcrafted graph over osc -> filter -> lfo with every
// instance reached: the oscillator feeds the filter, the modulator works the
// cutoff, and the oscillator's normal is broken by the explicit insert.
func chainGraph(t *testing.T) (patch.Graph, rig.Canonical) {
	t.Helper()
	canonical := assembled(t,
		testsupport.OscillatorSpec(), testsupport.FilterSpec(), testsupport.ModulatorSpec())

	graph := patch.Graph{
		PatchID: "patch-test",
		RigID:   canonical.RigID,
		Seed:    "seed-a",
		Phases: []patch.PhaseConnections{
			{Phase: patch.PhasePrep, Connections: []patch.Connection{
				{Phase: patch.PhasePrep,
					From: rig.Endpoint{Instance: 0, Port: "Out"},
					To:   rig.Endpoint{Instance: 1, Port: "In"}},
			}},
			{Phase: patch.PhaseThreshold, Connections: []patch.Connection{
				{Phase: patch.PhaseThreshold,
					From: rig.Endpoint{Instance: 2, Port: "Tri"},
					To:   rig.Endpoint{Instance: 1, Port: "Cutoff"}},
			}},
		},
	}
	from := rig.Endpoint{Instance: 0, Port: "Out"}
	for _, edge := range canonical.Normals {
		graph.Normals = append(graph.Normals, patch.NormalState{
			Edge: edge, Broken: true, BrokenBy: &from,
		})
	}
	return graph, canonical
}

func TestValidateValidGraph(t *testing.T) {
	graph, canonical := chainGraph(t)

	validation := patch.Validate(graph, canonical)
	if validation.State != patch.StateValid {
		t.Fatalf("state = %s, violations = %+v", validation.State, validation.Violations)
	}
	if len(validation.Violations) != 0 {
		t.Fatalf("valid graph carries violations: %+v", validation.Violations)
	}
}

func TestValidateIsIdempotentAndReadOnly(t *testing.T) {
	graph, canonical := chainGraph(t)
	snapshot := patch.Graph{
		PatchID: graph.PatchID, RigID: graph.RigID, Seed: graph.Seed,
	}
	snapshot.Phases = append(snapshot.Phases, graph.Phases...)
	snapshot.Normals = append(snapshot.Normals, graph.Normals...)

	first := patch.Validate(graph, canonical)
	second := patch.Validate(graph, canonical)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-validation differs: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(graph.Phases, snapshot.Phases) || !reflect.DeepEqual(graph.Normals, snapshot.Normals) {
		t.Fatal("validation mutated the graph")
	}
}

func TestValidateMissingEndpoint(t *testing.T) {
	graph, canonical := chainGraph(t)
	graph.Phases[0].Connections[0].To = rig.Endpoint{Instance: 9, Port: "In"}

	validation := patch.Validate(graph, canonical)
	if validation.State != patch.StateInvalid {
		t.Fatalf("state = %s, want invalid", validation.State)
	}
	if !hasRule(validation, patch.RuleEndpoint) {
		t.Fatalf("violations = %+v, want %s", validation.Violations, patch.RuleEndpoint)
	}
}

func TestValidateDirectionAndCompatibility(t *testing.T) {
	graph, canonical := chainGraph(t)

	// Input used as a source.
	backwards := graph
	backwards.Phases[0].Connections[0].From = rig.Endpoint{Instance: 1, Port: "In"}
	if v := patch.Validate(backwards, canonical); !hasRule(v, patch.RuleDirection) {
		t.Fatalf("violations = %+v, want %s", v.Violations, patch.RuleDirection)
	}

	graph, canonical = chainGraph(t)
	// Audio output into a CV input.
	graph.Phases[0].Connections[0].To = rig.Endpoint{Instance: 1, Port: "Cutoff"}
	if v := patch.Validate(graph, canonical); !hasRule(v, patch.RuleCompat) {
		t.Fatalf("violations = %+v, want %s", v.Violations, patch.RuleCompat)
	}
}

func TestValidatePhaseOrderRules(t *testing.T) {
	graph, canonical := chainGraph(t)
	graph.Phases = []patch.PhaseConnections{
		{Phase: patch.PhaseThreshold},
		{Phase: patch.PhasePrep, Connections: graph.Phases[0].Connections},
		{Phase: patch.PhaseThreshold},
	}
	validation := patch.Validate(graph, canonical)
	if !hasRule(validation, patch.RulePhaseOrder) {
		t.Fatalf("violations = %+v, want %s", validation.Violations, patch.RulePhaseOrder)
	}
}

func TestValidatePhaseMembership(t *testing.T) {
	graph, canonical := chainGraph(t)
	graph.Phases[1].Connections[0].Phase = patch.PhaseSeal

	validation := patch.Validate(graph, canonical)
	if !hasRule(validation, patch.RulePhaseMember) {
		t.Fatalf("violations = %+v, want %s", validation.Violations, patch.RulePhaseMember)
	}
}

func TestValidateDisconnectedInstance(t *testing.T) {
	graph, canonical := chainGraph(t)
	// Drop the modulator's only connection.
	graph.Phases[1].Connections = nil

	validation := patch.Validate(graph, canonical)
	if validation.State != patch.StateInvalid {
		t.Fatalf("state = %s, want invalid", validation.State)
	}
	if !hasRule(validation, patch.RuleDisconnected) {
		t.Fatalf("violations = %+v, want %s", validation.Violations, patch.RuleDisconnected)
	}
}

func TestValidatePassiveInstancesMayFloat(t *testing.T) {
	canonical := assembled(t,
		testsupport.OscillatorSpec(), testsupport.FilterSpec(), testsupport.PassiveMultSpec())

	graph := patch.Graph{
		PatchID: "patch-test",
		RigID:   canonical.RigID,
		Seed:    "seed-a",
		Phases: []patch.PhaseConnections{
			{Phase: patch.PhasePrep, Connections: []patch.Connection{
				{Phase: patch.PhasePrep,
					From: rig.Endpoint{Instance: 0, Port: "Out"},
					To:   rig.Endpoint{Instance: 1, Port: "In"}},
			}},
		},
	}
	for _, edge := range canonical.Normals {
		from := edge.From
		graph.Normals = append(graph.Normals, patch.NormalState{Edge: edge, Broken: true, BrokenBy: &from})
	}

	validation := patch.Validate(graph, canonical)
	if validation.State != patch.StateValid {
		t.Fatalf("passive mult flagged: %+v", validation.Violations)
	}
}

func hasRule(validation patch.Validation, rule string) bool {
	for _, violation := range validation.Violations {
		if violation.Rule == rule {
			return true
		}
	}
	return false
}
