package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/display"
	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/parser"
	"github.com/harrison/delegate/internal/report"
	"github.com/harrison/delegate/internal/store"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <lead-file>",
		Short: "Generate a delegation report for one lead",
		Long: `Generate a delegation report for the lead described in a JSON or YAML file.

The report is validated, repaired unless --no-repair is given, archived in
the report store and written to the output directory.

Examples:
  delegate generate lead.json
  delegate generate lead.yaml --backend claude-cli --format html
  delegate generate lead.json --stdout --format json
  delegate generate lead.json --no-repair --timeout 1m`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	addGenerationFlags(cmd)
	cmd.Flags().String("output-dir", "", "Directory for rendered reports (default: .delegate/reports)")
	cmd.Flags().String("format", formatMarkdown, "Output format: md, html, json")
	cmd.Flags().Bool("stdout", false, "Print the rendered report instead of writing a file")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if err := validFormat(format); err != nil {
		return err
	}
	toStdout, _ := cmd.Flags().GetBool("stdout")

	out := cmd.OutOrStdout()
	display.DisplaySingleFile(cmd.ErrOrStderr(), args[0])
	lead, err := parser.ParseLeadFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, err := rt.service.Generate(ctx, lead)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	rt.reportResult(rec)

	if toStdout {
		data, err := renderRecord(rec, format)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	path, err := writeRecord(ctx, cfg.OutputDir, rec, format)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "Report %s written to %s\n", rec.ID, path)
	return nil
}

// reportResult logs a finished report to the console and the run log and
// shows any validation problems left after repair. It is safe to call from
// concurrent batch workers.
func (rt *runtime) reportResult(rec *store.Record) {
	label := rec.Lead.FullName()
	if label == "" {
		label = rec.Lead.Email
	}
	rt.console.LogReportSummary(label, report.Analyze(rec.Report), rec.Validation, rec.Duration)
	if rt.file != nil {
		if err := rt.file.LogReportResult(rec.ID, rec.Lead, rec.Tier, rec.Report, rec.Validation); err != nil {
			rt.console.LogWarn(logger.KV("failed to write report log", "id", rec.ID, "error", err))
		}
	}
	if w, ok := display.WarnValidation("Report "+rec.ID+" has open issues", rec.Validation); ok {
		w.Display(rt.console)
	}
}
