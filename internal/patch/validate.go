package patch

import (
	"fmt"

	"patchforge/internal/catalog"
	"patchforge/internal/rig"
)

// State is the validation state of a graph.
type State string

const (
	StateUnchecked State = "unchecked"
	StateValid     State = "valid"
	StateInvalid   State = "invalid"
)

// Violation rules reported by Validate.
const (
	RulePhaseOrder   = "phase-order"
	RulePhaseMember  = "phase-membership"
	RuleEndpoint     = "endpoint-exists"
	RuleDirection    = "port-direction"
	RuleCompat       = "port-compatibility"
	RuleDisconnected = "instance-disconnected"
)

// Violation names one broken rule and the connection or instance at fault.
type Violation struct {
	Rule    string `json:"rule"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// Validation is the structured outcome of validating a graph. An invalid
// graph is an expected result, not an error.
type Validation struct {
	State      State       `json:"state"`
	Violations []Violation `json:"violations,omitempty"`
}

// Validate checks a graph against its owning rig. It is read-only and
// idempotent: re-validating an already-valid graph yields valid with no
// violations.
func Validate(graph Graph, canonical rig.Canonical) Validation {
	var violations []Violation

	violations = append(violations, checkPhaseStructure(graph)...)

	for _, phaseGroup := range graph.Phases {
		for _, connection := range phaseGroup.Connections {
			subject := fmt.Sprintf("%s -> %s", connection.From, connection.To)
			if connection.Phase != phaseGroup.Phase {
				violations = append(violations, Violation{
					Rule:    RulePhaseMember,
					Subject: subject,
					Detail: fmt.Sprintf("connection tagged %s inside phase %s",
						connection.Phase, phaseGroup.Phase),
				})
			}
			violations = append(violations, checkConnection(connection, canonical, subject)...)
		}
	}

	violations = append(violations, checkDisconnected(graph, canonical)...)

	if len(violations) > 0 {
		return Validation{State: StateInvalid, Violations: violations}
	}
	return Validation{State: StateValid}
}

func checkPhaseStructure(graph Graph) []Violation {
	var violations []Violation
	order := Phases()
	position := make(map[Phase]int, len(order))
	for i, phase := range order {
		position[phase] = i
	}

	seen := make(map[Phase]bool)
	last := -1
	for _, phaseGroup := range graph.Phases {
		idx, known := position[phaseGroup.Phase]
		if !known {
			violations = append(violations, Violation{
				Rule:    RulePhaseOrder,
				Subject: string(phaseGroup.Phase),
				Detail:  "unknown phase",
			})
			continue
		}
		if seen[phaseGroup.Phase] {
			violations = append(violations, Violation{
				Rule:    RulePhaseOrder,
				Subject: string(phaseGroup.Phase),
				Detail:  "phase appears more than once",
			})
			continue
		}
		seen[phaseGroup.Phase] = true
		if idx <= last {
			violations = append(violations, Violation{
				Rule:    RulePhaseOrder,
				Subject: string(phaseGroup.Phase),
				Detail:  "phase out of order",
			})
		}
		last = idx
	}
	return violations
}

func checkConnection(connection Connection, canonical rig.Canonical, subject string) []Violation {
	var violations []Violation

	fromPort, fromOK := canonical.Port(connection.From)
	if !fromOK {
		violations = append(violations, Violation{
			Rule:    RuleEndpoint,
			Subject: subject,
			Detail:  fmt.Sprintf("source endpoint %s does not exist", connection.From),
		})
	}
	toPort, toOK := canonical.Port(connection.To)
	if !toOK {
		violations = append(violations, Violation{
			Rule:    RuleEndpoint,
			Subject: subject,
			Detail:  fmt.Sprintf("destination endpoint %s does not exist", connection.To),
		})
	}
	if !fromOK || !toOK {
		return violations
	}

	if fromPort.Direction != catalog.PortOut {
		violations = append(violations, Violation{
			Rule:    RuleDirection,
			Subject: subject,
			Detail:  fmt.Sprintf("%s is not an output", connection.From),
		})
	}
	if toPort.Direction != catalog.PortIn {
		violations = append(violations, Violation{
			Rule:    RuleDirection,
			Subject: subject,
			Detail:  fmt.Sprintf("%s is not an input", connection.To),
		})
	}
	if fromPort.Direction == catalog.PortOut && toPort.Direction == catalog.PortIn &&
		!classCompatible(fromPort.Class, toPort.Class) {
		violations = append(violations, Violation{
			Rule:    RuleCompat,
			Subject: subject,
			Detail:  fmt.Sprintf("%s output cannot feed %s input", fromPort.Class, toPort.Class),
		})
	}
	return violations
}

// checkDisconnected flags instances no cable or intact normal reaches,
// unless the catalog marks them passive.
func checkDisconnected(graph Graph, canonical rig.Canonical) []Violation {
	connected := make(map[int]bool)
	for _, connection := range graph.Connections() {
		connected[connection.From.Instance] = true
		connected[connection.To.Instance] = true
	}
	for _, state := range graph.Normals {
		if state.Broken {
			continue
		}
		connected[state.Edge.From.Instance] = true
		connected[state.Edge.To.Instance] = true
	}

	var violations []Violation
	for _, instance := range canonical.Instances {
		if connected[instance.ID] || instance.Spec.Passive {
			continue
		}
		violations = append(violations, Violation{
			Rule:    RuleDisconnected,
			Subject: fmt.Sprintf("instance %d (%s)", instance.ID, instance.Key),
			Detail:  "no connection or intact normal reaches this instance",
		})
	}
	return violations
}
