package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/layout"
	"patchforge/internal/seed"
	"patchforge/internal/workflow"
)

func newLayoutCommand(ctx *commandContext) *cobra.Command {
	var rigID string
	var profileFlag string
	var seedFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layout <key>...",
		Short: "Suggest a case layout for a rig",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(cfg *config.Config, store *catalog.Store, pipeline *workflow.Pipeline) error {
				if profileFlag == "" {
					profileFlag = cfg.Generation.LayoutProfile
				}
				profile, err := layout.ParseProfile(profileFlag)
				if err != nil {
					return err
				}

				canonical, _, err := pipeline.AssembleRig(cmd.Context(), rigSpecFromArgs(rigID, args))
				if err != nil {
					return err
				}
				suggestion, err := pipeline.SuggestLayout(cmd.Context(), canonical, profile, seed.Seed(seedFlag))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, suggestion)
				}

				rows := make([][]string, 0, len(suggestion.Placements))
				for _, placement := range suggestion.Placements {
					rows = append(rows, []string{
						strconv.Itoa(placement.Row),
						strconv.Itoa(placement.OffsetHP) + " hp",
						strconv.Itoa(placement.Instance),
						placement.Key,
						strconv.Itoa(placement.WidthHP) + " hp",
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Row", "Offset", "ID", "Key", "Width"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignRight},
				))
				fmt.Fprintf(out, "Profile %s, row width %d hp, seed %s\n",
					suggestion.Profile, suggestion.RowWidthHP, suggestion.Seed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rigID, "rig", "rig", "Rig identifier")
	cmd.Flags().StringVar(&profileFlag, "profile", "", "Layout profile: performer, studio, or minimal")
	cmd.Flags().StringVar(&seedFlag, "seed", "", "Layout seed (synthesized and reported when omitted)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the suggestion as JSON")
	return cmd
}
