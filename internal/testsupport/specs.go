package testsupport

import "patchforge/internal/catalog"

// OscillatorSpec returns a minimal voice source used across pipeline tests.
func OscillatorSpec() catalog.ModuleSpec {
	return catalog.ModuleSpec{
		Brand:    "Testbrand",
		Model:    "Osc",
		Category: catalog.CategoryOscillator,
		WidthHP:  10,
		Power:    catalog.PowerDraw{PlusTwelve: 40, MinusTwelve: 10},
		Ports: []catalog.Port{
			{Name: "Out", Direction: catalog.PortOut, Class: catalog.SignalAudio},
			{Name: "V/Oct", Direction: catalog.PortIn, Class: catalog.SignalCV},
			{Name: "FM", Direction: catalog.PortIn, Class: catalog.SignalCV},
		},
		Normals: []catalog.Normal{{FromPort: "Out", ToPort: "In"}},
	}
}

// FilterSpec returns a processing module with an audio input chain.
func FilterSpec() catalog.ModuleSpec {
	return catalog.ModuleSpec{
		Brand:    "Testbrand",
		Model:    "Filter",
		Category: catalog.CategoryFilter,
		WidthHP:  8,
		Power:    catalog.PowerDraw{PlusTwelve: 30, MinusTwelve: 30},
		Ports: []catalog.Port{
			{Name: "In", Direction: catalog.PortIn, Class: catalog.SignalAudio},
			{Name: "Out", Direction: catalog.PortOut, Class: catalog.SignalAudio},
			{Name: "Cutoff", Direction: catalog.PortIn, Class: catalog.SignalCV},
		},
		Normals: []catalog.Normal{{FromPort: "Out", ToPort: "In"}},
	}
}

// VCASpec returns an amplifier stage for chain-terminating tests.
func VCASpec() catalog.ModuleSpec {
	return catalog.ModuleSpec{
		Brand:    "Testbrand",
		Model:    "VCA",
		Category: catalog.CategoryVCA,
		WidthHP:  6,
		Power:    catalog.PowerDraw{PlusTwelve: 25, MinusTwelve: 25},
		Ports: []catalog.Port{
			{Name: "In", Direction: catalog.PortIn, Class: catalog.SignalAudio},
			{Name: "Out", Direction: catalog.PortOut, Class: catalog.SignalAudio},
			{Name: "CV", Direction: catalog.PortIn, Class: catalog.SignalCV},
		},
	}
}

// ModulatorSpec returns an LFO used for modulation-path tests.
func ModulatorSpec() catalog.ModuleSpec {
	return catalog.ModuleSpec{
		Brand:    "Testbrand",
		Model:    "LFO",
		Category: catalog.CategoryLFO,
		WidthHP:  4,
		Power:    catalog.PowerDraw{PlusTwelve: 20, MinusTwelve: 20},
		Ports: []catalog.Port{
			{Name: "Tri", Direction: catalog.PortOut, Class: catalog.SignalCV},
			{Name: "Sq", Direction: catalog.PortOut, Class: catalog.SignalGate},
			{Name: "Rate", Direction: catalog.PortIn, Class: catalog.SignalCV},
		},
	}
}

// PassiveMultSpec returns a passive signal splitter.
func PassiveMultSpec() catalog.ModuleSpec {
	return catalog.ModuleSpec{
		Brand:    "Testbrand",
		Model:    "Mult",
		Category: catalog.CategoryMult,
		WidthHP:  2,
		Passive:  true,
		Ports: []catalog.Port{
			{Name: "In", Direction: catalog.PortIn, Class: catalog.SignalAudio},
			{Name: "Out 1", Direction: catalog.PortOut, Class: catalog.SignalAudio},
			{Name: "Out 2", Direction: catalog.PortOut, Class: catalog.SignalAudio},
		},
	}
}
