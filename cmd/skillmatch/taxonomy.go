package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTaxonomyCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Build and inspect the skill taxonomy",
	}
	cmd.AddCommand(
		newTaxonomyBuildCmd(app),
		newTaxonomyShowCmd(app),
		newTaxonomyLookupCmd(app),
	)
	return cmd
}

func newTaxonomyBuildCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Rebuild the taxonomy from its sources and overwrite the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := app.loadEngine(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer eng.Stop()

			stats := eng.TaxonomyStats()
			fmt.Fprintf(app.out, "Taxonomy written to %s\n", app.settings.Taxonomy.CachePath)
			fmt.Fprintf(app.out, "  entries:  %d (%d multi-word)\n", stats.Entries, stats.MultiWordEntries)
			fmt.Fprintf(app.out, "  variants: %d\n", stats.Variants)
			if len(stats.Sources) > 0 {
				fmt.Fprintf(app.out, "  sources:  %s\n", strings.Join(stats.Sources, ", "))
			}
			if stats.Partial {
				fmt.Fprintln(app.out, "  warning:  some sources failed, built from the remaining data")
			}
			return nil
		},
	}
}

func newTaxonomyShowCmd(app *cli) *cobra.Command {
	var listEntries bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print statistics of the cached taxonomy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := app.loadEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer eng.Stop()

			if !listEntries {
				return writeJSON(app.out, eng.TaxonomyStats())
			}
			tax, err := eng.Taxonomy()
			if err != nil {
				return err
			}
			for _, entry := range tax.Entries() {
				fmt.Fprintf(app.out, "%s\t%s\t%s\n", entry.Canonical, entry.Source, strings.Join(entry.Variants, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&listEntries, "entries", false, "List every entry with its source and variants")
	return cmd
}

func newTaxonomyLookupCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <term>",
		Short: "Resolve a term to its canonical skill",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := app.loadEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer eng.Stop()

			term := strings.Join(args, " ")
			lookup := eng.LookupSkill(term)
			if lookup.Found {
				fmt.Fprintf(app.out, "%s -> %s (%s)\n", term, lookup.Entry.Canonical, lookup.Entry.Source)
				fmt.Fprintf(app.out, "variants: %s\n", strings.Join(lookup.Entry.Variants, ", "))
				return nil
			}
			if len(lookup.Suggestions) > 0 {
				fmt.Fprintf(app.out, "%s is not a known skill. Did you mean: %s?\n", term, strings.Join(lookup.Suggestions, ", "))
				return nil
			}
			fmt.Fprintf(app.out, "%s is not a known skill\n", term)
			return nil
		},
	}
}
