// Package patch generates and validates patch graphs: directed signal
// connections over a canonical rig, organized into the five fixed phases
// prep, threshold, peak, release, and seal.
//
// Generation is fully seeded. Each phase draws from its own derived sub-seed,
// candidate connections are ranked by target instance id then port name, and
// the only nondeterminism allowed is the seeded pick among ranked candidates.
// Normalled edges survive into the graph unless an explicit connection
// touches one of their endpoints, in which case the edge is marked broken for
// that graph only.
//
// Validation is a one-way state machine from unchecked to valid or invalid.
// An invalid graph is a normal structured result carrying the precise
// violations, not an error.
package patch
