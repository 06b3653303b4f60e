package catalog

import (
	"strings"
	"time"

	"patchforge/internal/provenance"
)

// EntryStatus tracks whether the latest revision of a key is usable.
// Tombstoning is modeled as a status on the latest revision, never deletion.
type EntryStatus string

const (
	EntryActive     EntryStatus = "active"
	EntryDeprecated EntryStatus = "deprecated"
)

// PortDirection distinguishes signal inputs from outputs.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// SignalClass describes what kind of signal a port carries.
type SignalClass string

const (
	SignalAudio   SignalClass = "audio"
	SignalCV      SignalClass = "cv"
	SignalGate    SignalClass = "gate"
	SignalTrigger SignalClass = "trigger"
	SignalClock   SignalClass = "clock"
)

// Category classifies a module's role in a rig.
type Category string

const (
	CategoryOscillator Category = "oscillator"
	CategoryNoise      Category = "noise"
	CategorySampler    Category = "sampler"
	CategoryLFO        Category = "lfo"
	CategoryEnvelope   Category = "envelope"
	CategoryRandom     Category = "random"
	CategoryFilter     Category = "filter"
	CategoryVCA        Category = "vca"
	CategoryEffect     Category = "effect"
	CategoryDelay      Category = "delay"
	CategoryReverb     Category = "reverb"
	CategoryMixer      Category = "mixer"
	CategorySequencer  Category = "sequencer"
	CategoryClock      Category = "clock"
	CategoryMult       Category = "mult"
	CategoryBlank      Category = "blank"
	CategoryUtility    Category = "utility"
)

var sourceCategories = map[Category]struct{}{
	CategoryOscillator: {},
	CategoryNoise:      {},
	CategorySampler:    {},
}

var modulationCategories = map[Category]struct{}{
	CategoryLFO:       {},
	CategoryEnvelope:  {},
	CategoryRandom:    {},
	CategorySequencer: {},
	CategoryClock:     {},
}

var processingCategories = map[Category]struct{}{
	CategoryFilter: {},
	CategoryVCA:    {},
	CategoryEffect: {},
	CategoryMixer:  {},
	CategoryDelay:  {},
	CategoryReverb: {},
}

var feedbackCategories = map[Category]struct{}{
	CategoryDelay:  {},
	CategoryReverb: {},
	CategoryEffect: {},
}

// IsSource reports whether modules of this category originate signal.
func (c Category) IsSource() bool {
	_, ok := sourceCategories[c]
	return ok
}

// IsModulation reports whether modules of this category shape other signals
// with control voltage, gates, or clocks.
func (c Category) IsModulation() bool {
	_, ok := modulationCategories[c]
	return ok
}

// IsProcessing reports whether modules of this category transform audio.
func (c Category) IsProcessing() bool {
	_, ok := processingCategories[c]
	return ok
}

// IsFeedbackCapable reports whether modules of this category tolerate being
// patched into feedback paths.
func (c Category) IsFeedbackCapable() bool {
	_, ok := feedbackCategories[c]
	return ok
}

// ParseCategory maps a free-form category label to a known Category,
// defaulting to utility for anything unrecognized.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryOscillator, CategoryNoise, CategorySampler, CategoryLFO,
		CategoryEnvelope, CategoryRandom, CategoryFilter, CategoryVCA,
		CategoryEffect, CategoryDelay, CategoryReverb, CategoryMixer,
		CategorySequencer, CategoryClock, CategoryMult, CategoryBlank,
		CategoryUtility:
		return c
	case "vco":
		return CategoryOscillator
	case "vcf":
		return CategoryFilter
	case "function generator", "eg":
		return CategoryEnvelope
	case "granular", "fx":
		return CategoryEffect
	default:
		return CategoryUtility
	}
}

// Port is one jack on a module.
type Port struct {
	Name      string        `json:"name"`
	Direction PortDirection `json:"direction"`
	Class     SignalClass   `json:"class"`
}

// PowerDraw is current draw in milliamps per supply rail.
type PowerDraw struct {
	PlusTwelve  int `json:"plus_12_ma"`
	MinusTwelve int `json:"minus_12_ma"`
	PlusFive    int `json:"plus_5_ma"`
}

// Normal declares that an output port is normalled to an input port of the
// next instance in signal-flow order: the connection exists by default and is
// broken when an explicit connection is inserted at either endpoint.
type Normal struct {
	FromPort string `json:"from_port"`
	ToPort   string `json:"to_port"`
}

// ModuleSpec is the full specification payload of one catalog entry.
type ModuleSpec struct {
	Brand    string    `json:"brand"`
	Model    string    `json:"model"`
	Category Category  `json:"category"`
	WidthHP  int       `json:"width_hp"`
	Power    PowerDraw `json:"power"`
	Ports    []Port    `json:"ports,omitempty"`
	Normals  []Normal  `json:"normals,omitempty"`
	Passive  bool      `json:"passive,omitempty"`
}

// Port looks up a port by name.
func (s ModuleSpec) Port(name string) (Port, bool) {
	for _, p := range s.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Entry is one immutable revision of a module specification. Corrections
// append a new entry with Revision = previous+1 and PrevRevision populated;
// entries are never edited in place or deleted.
type Entry struct {
	Key          string                `json:"key"`
	Revision     int                   `json:"revision"`
	PrevRevision int                   `json:"prev_revision,omitempty"`
	Status       EntryStatus           `json:"status"`
	Provenance   provenance.Provenance `json:"provenance"`
	Confidence   float64               `json:"confidence"`
	Spec         ModuleSpec            `json:"spec"`
	CreatedAt    time.Time             `json:"created_at"`
}

// DisplayName renders the human-readable brand and model of an entry.
func (e Entry) DisplayName() string {
	name := strings.TrimSpace(e.Spec.Brand + " " + e.Spec.Model)
	if name == "" {
		return e.Key
	}
	return name
}
