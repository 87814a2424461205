package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/filelock"
	"github.com/harrison/delegate/internal/parser"
	"github.com/harrison/delegate/internal/render"
	"github.com/harrison/delegate/internal/report"
)

// NewRepairCommand creates the repair command
func NewRepairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair <report-file>",
		Short: "Fix a report so it meets the delegation rules",
		Long: `Run the repair pipeline on a report file: normalize cadence counts to 10,
raise delegation to 40%, and inject missing mandatory categories.

The repaired report is printed as JSON, or written to --output. An output
path ending in .md is rendered as Markdown.`,
		Args: cobra.ExactArgs(1),
		RunE: runRepair,
	}

	cmd.Flags().StringP("output", "o", "", "Write the repaired report to this file")
	return cmd
}

func runRepair(cmd *cobra.Command, args []string) error {
	r, err := parser.ParseReportFile(args[0])
	if err != nil {
		return err
	}

	outcome := report.NewPipeline(nil).Repair(r)

	errOut := cmd.ErrOrStderr()
	if outcome.Repaired() {
		fmt.Fprintf(errOut, "Applied: %s\n", strings.Join(outcome.Applied, ", "))
	} else {
		fmt.Fprintln(errOut, "Report already valid, nothing to repair")
	}
	fmt.Fprintf(errOut, "Errors: %d before, %d after\n", len(outcome.Before.Errors), len(outcome.After.Errors))

	var data []byte
	outPath, _ := cmd.Flags().GetString("output")
	if parser.DetectFormat(outPath) == parser.FormatMarkdown {
		data = []byte(render.Markdown(render.Document{Report: outcome.Report}))
	} else {
		data, err = json.MarshalIndent(outcome.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		data = append(data, '\n')
	}

	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := filelock.WriteFile(cmd.Context(), outPath, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Repaired report written to %s\n", outPath)
	return nil
}
