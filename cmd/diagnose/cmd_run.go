package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"machine-diagnosis-api/pkg/models"

	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run SYMPTOM...",
		Short: "Diagnose a set of observed symptom codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			diagnoses, reasoning, err := engine.Diagnose(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(models.DiagnoseResponse{
					Diagnoses:      diagnoses,
					Reasoning:      reasoning,
					TotalDiagnoses: len(diagnoses),
				})
			}

			if len(diagnoses) == 0 {
				fmt.Fprintln(out, "No diagnosis matched the given symptoms.")
				return nil
			}
			fmt.Fprintln(out, "Diagnoses:")
			for i, d := range diagnoses {
				fmt.Fprintf(out, "%d. %s (%s): %.2f%% confidence\n", i+1, d.Name, d.Type, d.Confidence)
				fmt.Fprintf(out, "   severity=%s risk=%s maintenance=%s\n", d.Severity, d.RiskLevel, d.MaintenanceTime)
			}
			fmt.Fprintln(out, "\nReasoning:")
			for _, step := range reasoning {
				fmt.Fprintf(out, "- %s: %s => %s (CF=%.4f)\n", step.RuleID, strings.Join(step.Evidence, " + "), step.Conclusion, step.CF)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
