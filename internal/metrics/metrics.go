// Package metrics computes deterministic derived numbers from a canonical
// rig: power budgets per rail, occupied width, category counts, and normalled
// path statistics. Metrics are all-or-nothing; a spec missing a required
// field fails the whole call rather than contributing a silent zero.
package metrics

import (
	"fmt"
	"sort"

	"patchforge/internal/rig"
	"patchforge/internal/services"
)

// Metric names produced by Map. Category counts additionally appear as
// "count_<category>" for each category present in the rig.
const (
	MetricModuleCount     = "module_count"
	MetricWidthHP         = "width_hp_total"
	MetricPowerPlus12     = "power_plus12_ma"
	MetricPowerMinus12    = "power_minus12_ma"
	MetricPowerPlus5      = "power_plus5_ma"
	MetricSourceCount     = "source_count"
	MetricModulationCount = "modulation_count"
	MetricProcessingCount = "processing_count"
	MetricNormalledEdges  = "normalled_edge_count"
	MetricLongestChain    = "longest_normalled_chain"
)

// Map computes every metric for the rig. Pure function: the same rig always
// produces the same values.
func Map(canonical rig.Canonical) (map[string]float64, error) {
	if len(canonical.Instances) == 0 {
		return nil, services.Wrap(services.ErrMetric, "metrics", "map",
			fmt.Sprintf("rig %s has no instances", canonical.RigID), nil)
	}

	values := map[string]float64{
		MetricModuleCount:     float64(len(canonical.Instances)),
		MetricWidthHP:         0,
		MetricPowerPlus12:     0,
		MetricPowerMinus12:    0,
		MetricPowerPlus5:      0,
		MetricSourceCount:     0,
		MetricModulationCount: 0,
		MetricProcessingCount: 0,
		MetricNormalledEdges:  float64(len(canonical.Normals)),
		MetricLongestChain:    float64(longestChain(canonical)),
	}

	for _, instance := range canonical.Instances {
		if err := checkRequired(instance); err != nil {
			return nil, err
		}
		values[MetricWidthHP] += float64(instance.Spec.WidthHP)
		values[MetricPowerPlus12] += float64(instance.Spec.Power.PlusTwelve)
		values[MetricPowerMinus12] += float64(instance.Spec.Power.MinusTwelve)
		values[MetricPowerPlus5] += float64(instance.Spec.Power.PlusFive)
		values["count_"+string(instance.Spec.Category)]++

		switch {
		case instance.Spec.Category.IsSource():
			values[MetricSourceCount]++
		case instance.Spec.Category.IsModulation():
			values[MetricModulationCount]++
		case instance.Spec.Category.IsProcessing():
			values[MetricProcessingCount]++
		}
	}

	return values, nil
}

// SortedNames returns the metric names of a result in stable order, for
// deterministic rendering.
func SortedNames(values map[string]float64) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkRequired(instance rig.Instance) error {
	if instance.Spec.Category == "" {
		return services.Wrap(services.ErrMetric, "metrics", "map",
			fmt.Sprintf("instance %d (%s): missing category", instance.ID, instance.Key), nil)
	}
	if instance.Spec.WidthHP <= 0 {
		return services.Wrap(services.ErrMetric, "metrics", "map",
			fmt.Sprintf("instance %d (%s): missing width_hp", instance.ID, instance.Key), nil)
	}
	power := instance.Spec.Power
	if !instance.Spec.Passive && power.PlusTwelve <= 0 && power.MinusTwelve <= 0 && power.PlusFive <= 0 {
		return services.Wrap(services.ErrMetric, "metrics", "map",
			fmt.Sprintf("instance %d (%s): missing power draw", instance.ID, instance.Key), nil)
	}
	return nil
}

// longestChain walks normalled edges as a forward graph and reports the
// longest default signal path, counted in edges.
func longestChain(canonical rig.Canonical) int {
	next := make(map[int][]int)
	for _, edge := range canonical.Normals {
		next[edge.From.Instance] = append(next[edge.From.Instance], edge.To.Instance)
	}

	memo := make(map[int]int)
	var walk func(id int, seen map[int]bool) int
	walk = func(id int, seen map[int]bool) int {
		if cached, ok := memo[id]; ok {
			return cached
		}
		if seen[id] {
			return 0
		}
		seen[id] = true
		best := 0
		for _, target := range next[id] {
			if depth := walk(target, seen) + 1; depth > best {
				best = depth
			}
		}
		delete(seen, id)
		memo[id] = best
		return best
	}

	longest := 0
	for _, instance := range canonical.Instances {
		if depth := walk(instance.ID, map[int]bool{}); depth > longest {
			longest = depth
		}
	}
	return longest
}
