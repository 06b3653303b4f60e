package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
	"patchforge/internal/patch"
	"patchforge/internal/rig"
	"patchforge/internal/seed"
	"patchforge/internal/workflow"
)

// patchDocument is the on-disk artifact written by `patch generate`: the rig
// the graphs were generated against plus the full generation result, so
// `patch validate` can re-check it without touching the catalog.
type patchDocument struct {
	Rig    rig.Canonical           `json:"rig"`
	Result workflow.GenerateResult `json:"result"`
}

func newPatchCommand(ctx *commandContext) *cobra.Command {
	patchCmd := &cobra.Command{
		Use:   "patch",
		Short: "Generate and validate patch graphs",
	}

	patchCmd.AddCommand(newPatchGenerateCommand(ctx))
	patchCmd.AddCommand(newPatchValidateCommand())

	return patchCmd
}

func newPatchGenerateCommand(ctx *commandContext) *cobra.Command {
	var rigID string
	var intentFlag string
	var seedFlag string
	var variations int
	var output string

	cmd := &cobra.Command{
		Use:   "generate <key>...",
		Short: "Generate a seeded patch graph for a rig",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(cfg *config.Config, store *catalog.Store, pipeline *workflow.Pipeline) error {
				if intentFlag == "" {
					intentFlag = cfg.Generation.Intent
				}
				intent, err := patch.ParseIntent(intentFlag)
				if err != nil {
					return err
				}
				if variations < 0 {
					variations = cfg.Generation.Variations
				}

				canonical, _, err := pipeline.AssembleRig(cmd.Context(), rigSpecFromArgs(rigID, args))
				if err != nil {
					return err
				}
				result, err := pipeline.GeneratePatch(cmd.Context(), canonical, intent, seed.Seed(seedFlag), variations)
				if err != nil {
					return err
				}

				document := patchDocument{Rig: canonical, Result: result}
				target := output
				if target == "" {
					target = filepath.Join(cfg.Paths.ExportDir, result.Patch.Graph.PatchID+".json")
				}
				if err := writeDocument(target, document); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printGraphSummary(out, result.Patch.Graph, result.Validations[0])
				for i, variation := range result.Patch.Variations {
					fmt.Fprintf(out, "Variation %d: %s (%s)\n", i+1, variation.PatchID, result.Validations[i+1].State)
				}
				fmt.Fprintf(out, "Seed: %s\n", result.Seed)
				fmt.Fprintf(out, "Wrote %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rigID, "rig", "rig", "Rig identifier")
	cmd.Flags().StringVar(&intentFlag, "intent", "", "Patch intent: ambient, rhythmic, or drone")
	cmd.Flags().StringVar(&seedFlag, "seed", "", "Generation seed (synthesized and reported when omitted)")
	cmd.Flags().IntVar(&variations, "variations", -1, "Number of alternate graphs to generate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults into the export directory)")
	return cmd
}

func newPatchValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate <patch.json>",
		Short:       "Re-validate a previously generated patch document",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read patch document: %w", err)
			}
			var document patchDocument
			if err := json.Unmarshal(raw, &document); err != nil {
				return fmt.Errorf("parse patch document: %w", err)
			}

			out := cmd.OutOrStdout()
			graphs := append([]patch.Graph{document.Result.Patch.Graph}, document.Result.Patch.Variations...)
			invalid := 0
			for _, graph := range graphs {
				validation := patch.Validate(graph, document.Rig)
				printGraphSummary(out, graph, validation)
				if validation.State != patch.StateValid {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d graphs invalid", invalid, len(graphs))
			}
			return nil
		},
	}
}

func printGraphSummary(out io.Writer, graph patch.Graph, validation patch.Validation) {
	connections := len(graph.Connections())
	broken := 0
	for _, state := range graph.Normals {
		if state.Broken {
			broken++
		}
	}
	fmt.Fprintf(out, "%s: %d connections, %d/%d normals broken, %s\n",
		graph.PatchID, connections, broken, len(graph.Normals), validation.State)

	if len(validation.Violations) > 0 {
		rows := make([][]string, 0, len(validation.Violations))
		for _, violation := range validation.Violations {
			rows = append(rows, []string{violation.Rule, violation.Subject, violation.Detail})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Rule", "Subject", "Detail"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}
}

func writeDocument(path string, document patchDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	encoded, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encode patch document: %w", err)
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write patch document: %w", err)
	}
	return nil
}
