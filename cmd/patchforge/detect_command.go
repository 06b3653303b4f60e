package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/workflow"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var rigID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect <photo>",
		Short: "Detect modules in a rack photo and update the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(cfg *config.Config, store *catalog.Store, pipeline *workflow.Pipeline) error {
				result, err := pipeline.IngestPhoto(cmd.Context(), rigID, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, result)
				}

				rows := make([][]string, 0, len(result.Resolutions))
				for _, resolution := range result.Resolutions {
					det := resolution.Detection
					rows = append(rows, []string{
						det.Name.Value,
						string(det.Category.Value),
						fmt.Sprintf("%.2f", det.Name.Confidence),
						resolution.Ref.Key,
						fmt.Sprintf("r%d", resolution.Ref.Revision),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Module", "Category", "Confidence", "Catalog Key", "Rev"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				if len(result.Appended) > 0 {
					fmt.Fprintf(out, "Synthesized %d new catalog entries\n", len(result.Appended))
				}
				fmt.Fprintf(out, "Batch %s: %d modules detected\n", result.Detection.BatchID, len(result.Resolutions))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rigID, "rig", "rig", "Rig identifier for the detected modules")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full ingestion result as JSON")
	return cmd
}
