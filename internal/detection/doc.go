// Package detection converts raw photo-inference output into provenanced
// module sightings. The detector never filters: every sighting the capability
// reports is kept, with its confidence clamped to [0,1], so downstream review
// decides what to trust.
package detection
