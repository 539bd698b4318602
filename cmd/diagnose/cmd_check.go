package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// regressionCase は同梱ナレッジベースで1位になるべき診断です。
type regressionCase struct {
	name     string
	symptoms []string
	expected string
}

var regressionCases = []regressionCase{
	{"Unbalance", []string{"Q2", "Q8"}, "Unbalance"},
	{"Misalignment", []string{"Q1", "Q2", "Q3", "Q6", "Q7", "Q13"}, "Misalignment"},
	{"Mechanical Looseness", []string{"Q2", "Q4", "Q9"}, "Mechanical_Looseness"},
	{"Bent Shaft", []string{"Q1", "Q3"}, "Bent_Shaft"},
	{"Bearing Defect", []string{"Q10", "Q11", "Q12"}, "Bearing_Defect"},
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the reference regression cases against the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := opts.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, tc := range regressionCases {
				diagnoses, _, err := engine.Diagnose(tc.symptoms)
				switch {
				case err != nil:
					failed++
					fmt.Fprintf(out, "FAIL  %-22s %s: %v\n", tc.name, strings.Join(tc.symptoms, ","), err)
				case len(diagnoses) == 0:
					failed++
					fmt.Fprintf(out, "FAIL  %-22s %s: no diagnosis\n", tc.name, strings.Join(tc.symptoms, ","))
				case diagnoses[0].Type != tc.expected:
					failed++
					fmt.Fprintf(out, "FAIL  %-22s expected %s, got %s\n", tc.name, tc.expected, diagnoses[0].Type)
				default:
					fmt.Fprintf(out, "PASS  %-22s %s (%.2f%%)\n", tc.name, diagnoses[0].Type, diagnoses[0].Confidence)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d regression cases failed", failed, len(regressionCases))
			}
			return nil
		},
	}
}
