package rig

import (
	"fmt"

	"patchforge/internal/catalog"
	"patchforge/internal/provenance"
)

// Declaration names one module in a rig, either by concrete catalog key or by
// a provenanced name still awaiting resolution.
type Declaration struct {
	Key  string                   `json:"key,omitempty"`
	Name provenance.Value[string] `json:"name,omitempty"`
}

// Spec is the externally supplied description of a rig: an identifier and an
// ordered module list. Declaration order is signal-flow order and is load
// bearing; it decides instance ids and which normalled edges exist.
type Spec struct {
	RigID        string        `json:"rig_id"`
	Declarations []Declaration `json:"declarations"`
}

// Instance is one placed module in a canonical rig. The id is the positional
// index within the spec, so it is stable across regeneration for the same
// spec and resolution outcome.
type Instance struct {
	ID       int                `json:"id"`
	Key      string             `json:"key"`
	Revision int                `json:"revision"`
	Spec     catalog.ModuleSpec `json:"spec"`
}

// Endpoint addresses one port on one instance.
type Endpoint struct {
	Instance int    `json:"instance"`
	Port     string `json:"port"`
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%d:%s", e.Instance, e.Port)
}

// NormalledEdge is a default signal path that exists unless an explicit
// connection is inserted at one of its endpoints. BreakOnInsert edges are
// suppressed per endpoint, never globally; breaking is a derived view
// computed per generated graph, the canonical rig itself is never mutated.
type NormalledEdge struct {
	From          Endpoint `json:"from"`
	To            Endpoint `json:"to"`
	BreakOnInsert bool     `json:"break_on_insert"`
}

// Canonical is the resolved, instance-bound model of a rig.
type Canonical struct {
	RigID     string          `json:"rig_id"`
	Instances []Instance      `json:"instances"`
	Normals   []NormalledEdge `json:"normals"`
}

// Instance returns the instance with the given id.
func (c Canonical) Instance(id int) (Instance, bool) {
	if id < 0 || id >= len(c.Instances) {
		return Instance{}, false
	}
	return c.Instances[id], true
}

// Port resolves an endpoint to its port definition.
func (c Canonical) Port(endpoint Endpoint) (catalog.Port, bool) {
	instance, ok := c.Instance(endpoint.Instance)
	if !ok {
		return catalog.Port{}, false
	}
	return instance.Spec.Port(endpoint.Port)
}
