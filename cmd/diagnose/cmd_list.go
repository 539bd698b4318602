package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSymptomsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms",
		Short: "List every symptom in the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCF\tNAME")
			for _, s := range engine.ListSymptoms() {
				fmt.Fprintf(w, "%s\t%.2f\t%s\n", s.ID, s.CF, s.Name)
			}
			return w.Flush()
		},
	}
}

func newRulesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List every rule with resolved symptom names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range engine.ListRules() {
				fmt.Fprintf(out, "%s  IF %s\n", r.ID, strings.Join(r.Conditions, " AND "))
				fmt.Fprintf(out, "    THEN %s (CF %.2f)\n", r.Conclusion, r.CF)
				if r.Description != "" {
					fmt.Fprintf(out, "    %s\n", r.Description)
				}
			}
			stats := engine.Stats()
			if stats.NonFiringRules > 0 {
				fmt.Fprintf(out, "\n%d rule(s) reference unknown symptoms and never fire\n", stats.NonFiringRules)
			}
			return nil
		},
	}
}
