package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/metrics"
	"patchforge/internal/rig"
	"patchforge/internal/workflow"
)

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	var rigID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assemble <key>...",
		Short: "Assemble a canonical rig from catalog keys and show its metrics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(cfg *config.Config, store *catalog.Store, pipeline *workflow.Pipeline) error {
				canonical, values, err := pipeline.AssembleRig(cmd.Context(), rigSpecFromArgs(rigID, args))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, struct {
						Rig     rig.Canonical      `json:"rig"`
						Metrics map[string]float64 `json:"metrics"`
					}{canonical, values})
				}

				rows := make([][]string, 0, len(canonical.Instances))
				for _, instance := range canonical.Instances {
					rows = append(rows, []string{
						strconv.Itoa(instance.ID),
						instance.Key,
						string(instance.Spec.Category),
						fmt.Sprintf("r%d", instance.Revision),
						strconv.Itoa(instance.Spec.WidthHP) + " hp",
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Key", "Category", "Rev", "Width"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
				))

				metricRows := make([][]string, 0, len(values))
				for _, name := range metrics.SortedNames(values) {
					metricRows = append(metricRows, []string{name, strconv.FormatFloat(values[name], 'f', -1, 64)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					metricRows,
					[]columnAlignment{alignLeft, alignRight},
				))

				fmt.Fprintf(out, "%d normalled edges\n", len(canonical.Normals))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rigID, "rig", "rig", "Rig identifier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the rig and metrics as JSON")
	return cmd
}

func rigSpecFromArgs(rigID string, keys []string) rig.Spec {
	spec := rig.Spec{RigID: rigID}
	for _, key := range keys {
		spec.Declarations = append(spec.Declarations, rig.Declaration{Key: catalog.KeyFor(key)})
	}
	return spec
}
