package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"patchforge/internal/catalog"
	"patchforge/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the module catalog",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogHistoryCommand(ctx))
	catalogCmd.AddCommand(newCatalogSeedCommand(ctx))

	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the latest revision of every catalog entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				entries, err := store.Find(cmd.Context(), func(entry catalog.Entry) bool {
					return category == "" || string(entry.Spec.Category) == category
				})
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.Key,
						entry.DisplayName(),
						string(entry.Spec.Category),
						strconv.Itoa(entry.Revision),
						string(entry.Status),
						fmt.Sprintf("%.2f", entry.Confidence),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Key", "Name", "Category", "Rev", "Status", "Confidence"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list entries in this category")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show the latest revision of one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				entry, err := store.Latest(cmd.Context(), catalog.KeyFor(args[0]))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, entry)
				}

				fmt.Fprintf(out, "%s (revision %d, %s)\n", entry.DisplayName(), entry.Revision, entry.Status)
				fmt.Fprintf(out, "Category: %s  Width: %d hp  Power: +12V %dmA / -12V %dmA / +5V %dmA\n",
					entry.Spec.Category, entry.Spec.WidthHP,
					entry.Spec.Power.PlusTwelve, entry.Spec.Power.MinusTwelve, entry.Spec.Power.PlusFive)
				fmt.Fprintf(out, "Origin: %s (%s), confidence %.2f\n",
					entry.Provenance.Origin, entry.Provenance.Source, entry.Confidence)

				if len(entry.Spec.Ports) > 0 {
					rows := make([][]string, 0, len(entry.Spec.Ports))
					for _, port := range entry.Spec.Ports {
						rows = append(rows, []string{port.Name, string(port.Direction), string(port.Class)})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Port", "Direction", "Class"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft},
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the entry as JSON")
	return cmd
}

func newCatalogHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <key>",
		Short: "Show every revision of one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				var rows [][]string
				for entry, err := range store.History(cmd.Context(), catalog.KeyFor(args[0])) {
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						strconv.Itoa(entry.Revision),
						strconv.Itoa(entry.PrevRevision),
						string(entry.Status),
						string(entry.Provenance.Origin),
						fmt.Sprintf("%.2f", entry.Confidence),
						entry.CreatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				if len(rows) == 0 {
					return fmt.Errorf("no catalog history for %q", args[0])
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Rev", "Prev", "Status", "Origin", "Confidence", "Created"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newCatalogSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter module specifications into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				added, err := catalog.Seed(cmd.Context(), store)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new entries (%d already present)\n",
					added, len(catalog.StarterSpecs())-added)
				return nil
			})
		},
	}
}
