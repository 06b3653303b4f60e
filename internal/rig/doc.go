// Package rig assembles a declared module list and resolved catalog entries
// into the canonical rig model consumed by metrics, layout, and patch
// generation. Assembly is deterministic and order-preserving; the canonical
// rig is a template that later stages read but never mutate.
package rig
