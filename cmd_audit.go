package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"focus_group_generator/generator"
)

func newAuditCommand(a *app) *cobra.Command {
	var studyPath string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "audit TRANSCRIPT",
		Short: "Score an existing transcript against its study",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStudy(studyPath)
			if err != nil {
				return err
			}
			t, err := a.tables()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading transcript: %w", err)
			}

			r := generator.NewAuditor(t).Audit(string(data), s)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printReport(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().StringVar(&studyPath, "study", "", "Study file (YAML or JSON)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

func printReport(w io.Writer, r generator.QualityReport) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "Quality score: %.0f%% (%d/%d checks passed)\n", r.Score*100, r.Passed, r.Total)
	_, _ = p.Fprintf(w, "Words: %d of ~%d expected\n", r.WordCount, r.ExpectedWords)
	for _, name := range generator.CheckNames {
		mark := "✗"
		if r.Checks[name] {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, name) //nolint:errcheck
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:") //nolint:errcheck
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec) //nolint:errcheck
		}
	}
}
