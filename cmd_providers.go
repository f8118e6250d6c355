package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"focus_group_generator/provider"
)

func newProvidersCommand(a *app) *cobra.Command {
	var languages []string
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their language coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printProviders(cmd.OutOrStdout(), languages)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "Languages to check coverage for, e.g. Hindi,English")
	return cmd
}

func printProviders(w io.Writer, languages []string) {
	recommended := provider.Recommend(languages)
	headers := []string{"", "ID", "NAME", "DEFAULT MODEL", "COVERAGE", "COST/1K WORDS", "RPM"}

	rows := [][]string{headers}
	for _, d := range provider.List() {
		mark := ""
		if d.ID == recommended {
			mark = "*"
		}
		cov := strings.Join(d.Languages, ", ")
		if len(languages) > 0 {
			sup, total := provider.LanguageCoverage(d.ID, languages)
			cov = fmt.Sprintf("%d/%d", sup, total)
		}
		rl, _ := provider.RateLimitFor(d.ID)
		rows = append(rows, []string{mark, string(d.ID), d.Name, d.DefaultModel(), cov, d.CostPer1K, fmt.Sprint(rl.RequestsPerMinute)})
	}

	widths := make([]int, len(headers))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(padRight(cell, widths[i]+2))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " ")) //nolint:errcheck
	}

	if len(languages) > 0 {
		fmt.Fprintf(w, "\n* recommended for %s: %s\n", strings.Join(languages, ", "), recommended) //nolint:errcheck
	} else {
		fmt.Fprintf(w, "\n* default provider: %s\n", recommended) //nolint:errcheck
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
