package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/display"
	"github.com/harrison/delegate/internal/parser"
	"github.com/harrison/delegate/internal/report"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <report-file>...",
		Short: "Check reports against the delegation rules",
		Long: `Parse report files (JSON or Markdown) and check for:
  - 10 tasks in each of the daily, weekly and monthly sections
  - at least 40% of tasks delegated
  - correspondence, scheduling, personal-life and recurring-process tasks

Quality problems (short summaries, unknown owners, vague titles) are
reported as warnings and do not fail validation.

Exit code: 0 if every report is valid, 1 otherwise`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateReportsWithOutput(args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateReportsWithOutput validates report files with custom output writer (for testing)
func validateReportsWithOutput(paths []string, output io.Writer) error {
	invalid := 0
	for _, path := range paths {
		r, err := parser.ParseReportFile(path)
		if err != nil {
			return err
		}

		result := report.Validate(r)
		if w, ok := display.WarnValidation(path, result); ok {
			w.Display(output)
		}
		if result.Valid {
			fmt.Fprintf(output, "%s %s\n", color.GreenString("✓"), path)
		} else {
			invalid++
			fmt.Fprintf(output, "%s %s\n", color.RedString("✗"), path)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d reports invalid", invalid, len(paths))
	}
	return nil
}
