package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/parser"
	"github.com/harrison/delegate/internal/report"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <report-file>",
		Short: "Show task counts, delegation and category coverage of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parser.ParseReportFile(args[0])
			if err != nil {
				return err
			}
			writeAnalysis(cmd.OutOrStdout(), report.Analyze(r), report.Validate(r))
			return nil
		},
	}
	return cmd
}

// writeAnalysis renders the metrics table followed by the category table.
func writeAnalysis(w io.Writer, a models.ReportAnalysis, result models.ValidationResult) {
	metrics := table.NewWriter()
	metrics.SetOutputMirror(w)
	metrics.AppendHeader(table.Row{"Metric", "Value", "Target"})
	for _, c := range models.Cadences {
		metrics.AppendRow(table.Row{string(c) + " tasks", a.CountFor(c), models.TasksPerCadence})
	}
	metrics.AppendRow(table.Row{"total tasks", a.Total, models.TargetTaskCount})
	metrics.AppendRow(table.Row{"delegated", fmt.Sprintf("%d (%d%%)", a.Delegated, a.DelegationPercent),
		fmt.Sprintf(">= %d%%", models.MinDelegationPercent)})
	metrics.AppendRow(table.Row{"retained", a.Retained, ""})
	metrics.AppendFooter(table.Row{"valid", result.Valid, fmt.Sprintf("%d errors, %d warnings", len(result.Errors), len(result.Warnings))})
	metrics.Render()

	cats := table.NewWriter()
	cats.SetOutputMirror(w)
	cats.AppendHeader(table.Row{"Category", "Present"})
	for _, c := range models.MandatoryCategories {
		cats.AppendRow(table.Row{c.Label(), yesNo(a.Categories.Has(c))})
	}
	cats.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
