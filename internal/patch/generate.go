package patch

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"patchforge/internal/catalog"
	"patchforge/internal/rig"
	"patchforge/internal/seed"
	"patchforge/internal/services"
)

// Generate produces the primary patch graph for a rig plus the requested
// number of seeded variations. The seed fully determines the output; two
// calls with the same rig, intent, and seed return identical results. The
// prep phase is mandatory: a rig with no signal sources, or sources with no
// compatible destination, fails with a generation error.
func Generate(canonical rig.Canonical, intent Intent, s seed.Seed, variations int) (Result, error) {
	if s == "" {
		return Result{}, services.Wrap(services.ErrGeneration, "patch", "generate", "seed is required", nil)
	}
	if _, err := ParseIntent(string(intent)); err != nil {
		return Result{}, services.Wrap(services.ErrGeneration, "patch", "generate", err.Error(), nil)
	}

	graph, plan, err := generateGraph(canonical, intent, s)
	if err != nil {
		return Result{}, err
	}
	result := Result{Graph: graph, Plan: plan}

	for i := 1; i <= variations; i++ {
		variantSeed := seed.Derive(s, "variation", i)
		variant, _, err := generateGraph(canonical, intent, variantSeed)
		if err != nil {
			return Result{}, fmt.Errorf("variation %d: %w", i, err)
		}
		result.Variations = append(result.Variations, variant)
	}
	return result, nil
}

type candidate struct {
	from rig.Endpoint
	to   rig.Endpoint
}

type generator struct {
	canonical  rig.Canonical
	intent     Intent
	usedInputs map[rig.Endpoint]bool
	usedOutput map[rig.Endpoint]bool
	touched    map[rig.Endpoint]Phase
	plan       []Decision
}

func generateGraph(canonical rig.Canonical, intent Intent, s seed.Seed) (Graph, []Decision, error) {
	g := &generator{
		canonical:  canonical,
		intent:     intent,
		usedInputs: make(map[rig.Endpoint]bool),
		usedOutput: make(map[rig.Endpoint]bool),
		touched:    make(map[rig.Endpoint]Phase),
	}

	graph := Graph{
		PatchID: patchID(canonical.RigID, s),
		RigID:   canonical.RigID,
		Seed:    s,
	}

	for _, phase := range Phases() {
		rng := seed.Source(seed.Derive(s, "phase:"+string(phase), 0))
		connections, err := g.connectPhase(phase, rng)
		if err != nil {
			return Graph{}, nil, err
		}
		graph.Phases = append(graph.Phases, PhaseConnections{Phase: phase, Connections: connections})
	}

	graph.Normals = g.normalStates()
	return graph, g.plan, nil
}

func (g *generator) connectPhase(phase Phase, rng *rand.Rand) ([]Connection, error) {
	var connections []Connection

	connect := func(from rig.Instance, candidates []candidate) {
		if len(candidates) == 0 {
			return
		}
		chosen := candidates[rng.IntN(len(candidates))]
		connections = append(connections, Connection{Phase: phase, From: chosen.from, To: chosen.to})
		g.usedInputs[chosen.to] = true
		g.usedOutput[chosen.from] = true
		g.touched[chosen.from] = phase
		g.touched[chosen.to] = phase
		g.plan = append(g.plan, Decision{
			Phase:      phase,
			Action:     "connect",
			Detail:     fmt.Sprintf("%s -> %s", chosen.from, chosen.to),
			Candidates: len(candidates),
		})
	}

	switch phase {
	case PhasePrep:
		sources := g.instancesWhere(func(i rig.Instance) bool { return i.Spec.Category.IsSource() })
		if len(sources) == 0 {
			return nil, services.Wrap(services.ErrGeneration, "patch", "generate",
				fmt.Sprintf("rig %s: prep phase has no source-capable instances", g.canonical.RigID), nil)
		}
		total := 0
		for _, source := range sources {
			candidates := g.candidates(source,
				[]catalog.SignalClass{catalog.SignalAudio},
				func(target rig.Instance) bool { return !target.Spec.Category.IsSource() },
				false)
			total += len(candidates)
			connect(source, candidates)
		}
		if total == 0 {
			return nil, services.Wrap(services.ErrGeneration, "patch", "generate",
				fmt.Sprintf("rig %s: prep phase has no compatible destination for any source", g.canonical.RigID), nil)
		}

	case PhaseThreshold:
		modulators := g.instancesWhere(func(i rig.Instance) bool { return i.Spec.Category.IsModulation() })
		for _, modulator := range modulators {
			candidates := g.preferredCandidates(modulator, thresholdClassOrder(g.intent),
				func(target rig.Instance) bool { return target.ID != modulator.ID })
			connect(modulator, candidates)
		}
		if len(modulators) == 0 {
			g.plan = append(g.plan, Decision{Phase: phase, Action: "skip", Detail: "no modulation instances"})
		}

	case PhasePeak:
		// Feedback-capable categories join the pool here, and cycles back
		// into earlier instances become legal.
		processors := g.instancesWhere(func(i rig.Instance) bool {
			return i.Spec.Category.IsProcessing() || i.Spec.Category.IsFeedbackCapable()
		})
		for _, processor := range processors {
			candidates := g.candidates(processor,
				[]catalog.SignalClass{catalog.SignalAudio},
				func(target rig.Instance) bool {
					if target.ID == processor.ID {
						return false
					}
					if target.ID < processor.ID {
						return target.Spec.Category.IsFeedbackCapable()
					}
					return target.Spec.Category.IsProcessing()
				},
				true)
			connect(processor, candidates)
		}

	case PhaseRelease:
		modulators := g.instancesWhere(func(i rig.Instance) bool { return i.Spec.Category.IsModulation() })
		for _, modulator := range modulators {
			candidates := g.candidates(modulator,
				[]catalog.SignalClass{catalog.SignalCV},
				func(target rig.Instance) bool {
					return target.ID != modulator.ID && target.Spec.Category.IsProcessing()
				},
				false)
			connect(modulator, candidates)
		}

	case PhaseSeal:
		// Route any still-unused audio output toward a mixing stage.
		for _, instance := range g.canonical.Instances {
			if instance.Spec.Category == catalog.CategoryMixer {
				continue
			}
			if g.hasUsedAudioOutput(instance) {
				continue
			}
			candidates := g.candidates(instance,
				[]catalog.SignalClass{catalog.SignalAudio},
				func(target rig.Instance) bool {
					return target.Spec.Category == catalog.CategoryMixer ||
						target.Spec.Category == catalog.CategoryVCA
				},
				false)
			connect(instance, candidates)
		}
	}

	return connections, nil
}

// candidates enumerates every legal (output, input) pair from one instance,
// ranked by target instance id ascending then port name, so the seeded pick
// is the only source of variation.
func (g *generator) candidates(from rig.Instance, classes []catalog.SignalClass, targetOK func(rig.Instance) bool, allowUsedOutputs bool) []candidate {
	classSet := make(map[catalog.SignalClass]bool, len(classes))
	for _, class := range classes {
		classSet[class] = true
	}

	var out []candidate
	for _, fromPort := range from.Spec.Ports {
		if fromPort.Direction != catalog.PortOut || !classSet[fromPort.Class] {
			continue
		}
		fromEndpoint := rig.Endpoint{Instance: from.ID, Port: fromPort.Name}
		if !allowUsedOutputs && g.usedOutput[fromEndpoint] {
			continue
		}
		for _, target := range g.canonical.Instances {
			if target.ID == from.ID || !targetOK(target) {
				continue
			}
			for _, toPort := range target.Spec.Ports {
				if toPort.Direction != catalog.PortIn || !classCompatible(fromPort.Class, toPort.Class) {
					continue
				}
				toEndpoint := rig.Endpoint{Instance: target.ID, Port: toPort.Name}
				if g.usedInputs[toEndpoint] {
					continue
				}
				out = append(out, candidate{from: fromEndpoint, to: toEndpoint})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].to.Instance != out[j].to.Instance {
			return out[i].to.Instance < out[j].to.Instance
		}
		if out[i].to.Port != out[j].to.Port {
			return out[i].to.Port < out[j].to.Port
		}
		return out[i].from.Port < out[j].from.Port
	})
	return out
}

// preferredCandidates tries output classes in preference order and returns
// the candidates of the first class that yields any.
func (g *generator) preferredCandidates(from rig.Instance, classOrder []catalog.SignalClass, targetOK func(rig.Instance) bool) []candidate {
	for _, class := range classOrder {
		if candidates := g.candidates(from, []catalog.SignalClass{class}, targetOK, false); len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

func thresholdClassOrder(intent Intent) []catalog.SignalClass {
	switch intent {
	case IntentRhythmic:
		return []catalog.SignalClass{catalog.SignalClock, catalog.SignalGate, catalog.SignalTrigger, catalog.SignalCV}
	case IntentDrone:
		return []catalog.SignalClass{catalog.SignalCV}
	default: // ambient
		return []catalog.SignalClass{catalog.SignalCV, catalog.SignalGate, catalog.SignalClock, catalog.SignalTrigger}
	}
}

func (g *generator) instancesWhere(keep func(rig.Instance) bool) []rig.Instance {
	var out []rig.Instance
	for _, instance := range g.canonical.Instances {
		if keep(instance) {
			out = append(out, instance)
		}
	}
	return out
}

func (g *generator) hasUsedAudioOutput(instance rig.Instance) bool {
	for _, port := range instance.Spec.Ports {
		if port.Direction != catalog.PortOut || port.Class != catalog.SignalAudio {
			continue
		}
		if g.usedOutput[rig.Endpoint{Instance: instance.ID, Port: port.Name}] {
			return true
		}
	}
	return false
}

// normalStates derives the per-graph fate of every normalled edge: an
// explicit connection touching either endpoint suppresses the edge for this
// graph. The canonical rig itself is never modified.
func (g *generator) normalStates() []NormalState {
	states := make([]NormalState, 0, len(g.canonical.Normals))
	for _, edge := range g.canonical.Normals {
		state := NormalState{Edge: edge}
		if edge.BreakOnInsert {
			if _, ok := g.touched[edge.From]; ok {
				broken := edge.From
				state.Broken = true
				state.BrokenBy = &broken
			} else if _, ok := g.touched[edge.To]; ok {
				broken := edge.To
				state.Broken = true
				state.BrokenBy = &broken
			}
		}
		states = append(states, state)
	}
	return states
}
