package patch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"patchforge/internal/catalog"
	"patchforge/internal/rig"
	"patchforge/internal/seed"
)

// Phase is one of the five temporal movements of a patch. Phases always occur
// in the fixed order below and each appears at most once per graph.
type Phase string

const (
	PhasePrep      Phase = "prep"
	PhaseThreshold Phase = "threshold"
	PhasePeak      Phase = "peak"
	PhaseRelease   Phase = "release"
	PhaseSeal      Phase = "seal"
)

// Phases returns the fixed phase order.
func Phases() []Phase {
	return []Phase{PhasePrep, PhaseThreshold, PhasePeak, PhaseRelease, PhaseSeal}
}

// Intent steers which signal classes the generator favors.
type Intent string

const (
	IntentAmbient  Intent = "ambient"
	IntentRhythmic Intent = "rhythmic"
	IntentDrone    Intent = "drone"
)

// ParseIntent validates an intent label.
func ParseIntent(raw string) (Intent, error) {
	switch Intent(raw) {
	case IntentAmbient, IntentRhythmic, IntentDrone:
		return Intent(raw), nil
	default:
		return "", fmt.Errorf("unknown intent %q", raw)
	}
}

// Connection is one explicit patch cable: an output endpoint into an input
// endpoint, valid during exactly one phase.
type Connection struct {
	Phase Phase        `json:"phase"`
	From  rig.Endpoint `json:"from"`
	To    rig.Endpoint `json:"to"`
}

// PhaseConnections groups the connections of one phase.
type PhaseConnections struct {
	Phase       Phase        `json:"phase"`
	Connections []Connection `json:"connections"`
}

// NormalState is the derived per-graph fate of one normalled edge. The edge
// is suppressed when an explicit connection touches either endpoint; BrokenBy
// names the endpoint that caused it.
type NormalState struct {
	Edge     rig.NormalledEdge `json:"edge"`
	Broken   bool              `json:"broken"`
	BrokenBy *rig.Endpoint     `json:"broken_by,omitempty"`
}

// Graph is a generated patch: the phase-ordered connection structure plus the
// per-graph state of every normalled edge. It references rig instances but
// never owns them.
type Graph struct {
	PatchID string             `json:"patch_id"`
	RigID   string             `json:"rig_id"`
	Seed    seed.Seed          `json:"seed"`
	Phases  []PhaseConnections `json:"phases"`
	Normals []NormalState      `json:"normals"`
}

// Connections flattens every explicit connection in phase order.
func (g Graph) Connections() []Connection {
	var all []Connection
	for _, phase := range g.Phases {
		all = append(all, phase.Connections...)
	}
	return all
}

// Decision is one audit entry from generation: what was chosen, where, and
// from how many candidates.
type Decision struct {
	Phase      Phase  `json:"phase"`
	Action     string `json:"action"`
	Detail     string `json:"detail"`
	Candidates int    `json:"candidates,omitempty"`
}

// Result bundles the primary graph, the ordered decision plan behind it, and
// seeded variations. Variations share the rig and phase structure but derive
// their own seeds, so each is independently reproducible.
type Result struct {
	Graph      Graph      `json:"graph"`
	Plan       []Decision `json:"plan"`
	Variations []Graph    `json:"variations"`
}

// patchID derives a stable identifier from the rig and seed so regeneration
// produces the same id, not a fresh one.
func patchID(rigID string, s seed.Seed) string {
	digest := sha256.Sum256([]byte(rigID + "\x1f" + string(s)))
	return "patch-" + hex.EncodeToString(digest[:6])
}

// classCompatible reports whether an output of class out may feed an input of
// class in. Audio and CV stay within their own class; gate, trigger, and
// clock pulses interchange where a module can interpret them.
func classCompatible(out, in catalog.SignalClass) bool {
	switch out {
	case catalog.SignalAudio:
		return in == catalog.SignalAudio
	case catalog.SignalCV:
		return in == catalog.SignalCV
	case catalog.SignalGate:
		return in == catalog.SignalGate || in == catalog.SignalTrigger
	case catalog.SignalTrigger:
		return in == catalog.SignalTrigger || in == catalog.SignalGate
	case catalog.SignalClock:
		return in == catalog.SignalClock || in == catalog.SignalTrigger || in == catalog.SignalGate
	default:
		return false
	}
}
