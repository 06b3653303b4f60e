package catalog

import (
	"context"
	"errors"
	"fmt"

	"patchforge/internal/provenance"
	"patchforge/internal/services"
)

// StarterSpecs is the built-in set of module specifications loaded by Seed so
// a fresh catalog can resolve common hardware without a single photo.
func StarterSpecs() []ModuleSpec {
	return []ModuleSpec{
		{
			Brand: "Mutable Instruments", Model: "Plaits", Category: CategoryOscillator, WidthHP: 12,
			Power: PowerDraw{PlusTwelve: 50, MinusTwelve: 5},
			Ports: []Port{
				{Name: "Out", Direction: PortOut, Class: SignalAudio},
				{Name: "Aux", Direction: PortOut, Class: SignalAudio},
				{Name: "V/Oct", Direction: PortIn, Class: SignalCV},
				{Name: "FM", Direction: PortIn, Class: SignalCV},
				{Name: "Trig", Direction: PortIn, Class: SignalTrigger},
			},
			Normals: []Normal{{FromPort: "Out", ToPort: "In"}},
		},
		{
			Brand: "Mutable Instruments", Model: "Ripples", Category: CategoryFilter, WidthHP: 8,
			Power: PowerDraw{PlusTwelve: 35, MinusTwelve: 35},
			Ports: []Port{
				{Name: "In", Direction: PortIn, Class: SignalAudio},
				{Name: "LP4", Direction: PortOut, Class: SignalAudio},
				{Name: "BP2", Direction: PortOut, Class: SignalAudio},
				{Name: "Freq", Direction: PortIn, Class: SignalCV},
			},
			Normals: []Normal{{FromPort: "LP4", ToPort: "In"}},
		},
		{
			Brand: "Make Noise", Model: "Maths", Category: CategoryEnvelope, WidthHP: 20,
			Power: PowerDraw{PlusTwelve: 60, MinusTwelve: 50},
			Ports: []Port{
				{Name: "Unity", Direction: PortOut, Class: SignalCV},
				{Name: "EOR", Direction: PortOut, Class: SignalGate},
				{Name: "Ch1 Trig", Direction: PortIn, Class: SignalTrigger},
				{Name: "Ch4 Trig", Direction: PortIn, Class: SignalTrigger},
			},
		},
		{
			Brand: "Intellijel", Model: "Quad VCA", Category: CategoryVCA, WidthHP: 12,
			Power: PowerDraw{PlusTwelve: 48, MinusTwelve: 48},
			Ports: []Port{
				{Name: "In 1", Direction: PortIn, Class: SignalAudio},
				{Name: "CV 1", Direction: PortIn, Class: SignalCV},
				{Name: "Out 1", Direction: PortOut, Class: SignalAudio},
				{Name: "In 2", Direction: PortIn, Class: SignalAudio},
				{Name: "Out 2", Direction: PortOut, Class: SignalAudio},
			},
			Normals: []Normal{{FromPort: "Out 1", ToPort: "In"}},
		},
		{
			Brand: "Make Noise", Model: "Mimeophon", Category: CategoryDelay, WidthHP: 16,
			Power: PowerDraw{PlusTwelve: 95, MinusTwelve: 25},
			Ports: []Port{
				{Name: "In L", Direction: PortIn, Class: SignalAudio},
				{Name: "Out L", Direction: PortOut, Class: SignalAudio},
				{Name: "Out R", Direction: PortOut, Class: SignalAudio},
				{Name: "Rate", Direction: PortIn, Class: SignalCV},
			},
		},
		{
			Brand: "ALM Busy Circuits", Model: "Pamela's New Workout", Category: CategoryClock, WidthHP: 8,
			Power: PowerDraw{PlusTwelve: 50},
			Ports: []Port{
				{Name: "Out 1", Direction: PortOut, Class: SignalClock},
				{Name: "Out 2", Direction: PortOut, Class: SignalClock},
				{Name: "Clk In", Direction: PortIn, Class: SignalClock},
			},
		},
		{
			Brand: "Doepfer", Model: "A-180-2", Category: CategoryMult, WidthHP: 2,
			Passive: true,
			Ports: []Port{
				{Name: "In", Direction: PortIn, Class: SignalAudio},
				{Name: "Out 1", Direction: PortOut, Class: SignalAudio},
				{Name: "Out 2", Direction: PortOut, Class: SignalAudio},
			},
		},
	}
}

// Seed appends revision 1 of every starter spec that is not already present.
// Existing keys are left untouched; the catalog never rewrites history.
func Seed(ctx context.Context, store *Store) (added int, err error) {
	for _, spec := range StarterSpecs() {
		key := KeyFor(spec.Brand, spec.Model)
		if _, err := store.Latest(ctx, key); err == nil {
			continue
		} else if !errors.Is(err, services.ErrNotFound) {
			return added, err
		}

		entry := Entry{
			Key:        key,
			Revision:   1,
			Status:     EntryActive,
			Provenance: provenance.Provenance{Origin: provenance.OriginDefault, Source: "starter-catalog"},
			Confidence: 1,
			Spec:       spec,
		}
		if err := store.Append(ctx, entry); err != nil {
			return added, fmt.Errorf("seed %s: %w", key, err)
		}
		added++
	}
	return added, nil
}
