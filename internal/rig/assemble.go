package rig

import (
	"fmt"

	"patchforge/internal/catalog"
	"patchforge/internal/services"
)

// Assemble binds a rig spec to resolved catalog entries, producing the
// canonical rig. Instance ids are positional indexes in declaration order.
// Normalled edges are derived from each entry's declared normals: an output
// port normalled to the named input port of the next instance, when both
// ports exist. Changing declaration order changes which edges exist.
func Assemble(spec Spec, entries []catalog.Entry) (Canonical, error) {
	if spec.RigID == "" {
		return Canonical{}, services.Wrap(services.ErrAssembly, "rig", "assemble", "rig id is empty", nil)
	}
	if len(spec.Declarations) == 0 {
		return Canonical{}, services.Wrap(services.ErrAssembly, "rig", "assemble",
			fmt.Sprintf("rig %s declares no modules", spec.RigID), nil)
	}

	byKey := make(map[string]catalog.Entry, len(entries))
	for _, entry := range entries {
		byKey[entry.Key] = entry
	}

	canonical := Canonical{
		RigID:     spec.RigID,
		Instances: make([]Instance, 0, len(spec.Declarations)),
	}

	for i, decl := range spec.Declarations {
		key := decl.Key
		if key == "" {
			key = catalog.KeyFor(decl.Name.Value)
		}
		if key == "" {
			return Canonical{}, services.Wrap(services.ErrAssembly, "rig", "assemble",
				fmt.Sprintf("rig %s: declaration %d has neither key nor name", spec.RigID, i), nil)
		}
		entry, ok := byKey[key]
		if !ok {
			return Canonical{}, services.Wrap(services.ErrAssembly, "rig", "assemble",
				fmt.Sprintf("rig %s: declaration %d references unknown key %s", spec.RigID, i, key), nil)
		}
		canonical.Instances = append(canonical.Instances, Instance{
			ID:       i,
			Key:      entry.Key,
			Revision: entry.Revision,
			Spec:     entry.Spec,
		})
	}

	canonical.Normals = deriveNormals(canonical.Instances)
	return canonical, nil
}

func deriveNormals(instances []Instance) []NormalledEdge {
	var edges []NormalledEdge
	for i, instance := range instances {
		next := i + 1
		if next >= len(instances) {
			break
		}
		for _, normal := range instance.Spec.Normals {
			from, ok := instance.Spec.Port(normal.FromPort)
			if !ok || from.Direction != catalog.PortOut {
				continue
			}
			to, ok := instances[next].Spec.Port(normal.ToPort)
			if !ok || to.Direction != catalog.PortIn {
				continue
			}
			edges = append(edges, NormalledEdge{
				From:          Endpoint{Instance: i, Port: normal.FromPort},
				To:            Endpoint{Instance: next, Port: normal.ToPort},
				BreakOnInsert: true,
			})
		}
	}
	return edges
}
