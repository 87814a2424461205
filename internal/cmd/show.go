package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/report"
	"github.com/harrison/delegate/internal/store"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show an archived report",
		Long: `Show a report from the archive.

The default table view lists every task with its owner. Use --format to
print the report as Markdown, HTML or JSON instead.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().String("store", "", "Path to the report archive (SQLite)")
	cmd.Flags().String("format", "table", "Output format: table, md, html, json")
	return cmd
}

// openArchive opens the configured store read-side. A missing database is
// reported instead of silently creating an empty one.
func openArchive(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.StorePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no report archive at %s", cfg.StorePath)
	}
	return store.NewStore(cfg.StorePath)
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "table" {
		if err := validFormat(format); err != nil {
			return err
		}
	}

	st, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("report %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if format != "table" {
		data, err := renderRecord(rec, format)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	writeRecordTable(out, rec)
	return nil
}

func writeRecordTable(w io.Writer, rec *store.Record) {
	fmt.Fprintf(w, "Report %s\n", rec.ID)
	fmt.Fprintf(w, "Lead: %s <%s> (%s)\n", rec.Lead.FullName(), rec.Lead.Email, rec.Lead.LeadType)
	fmt.Fprintf(w, "Generated: %s via %s, %s tier\n", rec.CreatedAt.Format("2006-01-02 15:04:05"), orDash(rec.Backend), rec.Tier)
	if rec.Repaired {
		fmt.Fprintf(w, "Repaired: %v\n", rec.Applied)
	}
	fmt.Fprintln(w)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Cadence", "#", "Task", "Owner", "Priority", "Category"})
	for _, c := range models.Cadences {
		for i, t := range rec.Report.Tasks.Get(c) {
			tw.AppendRow(table.Row{c, i + 1, t.Title, t.Owner, t.Priority, t.Category})
		}
		tw.AppendSeparator()
	}
	tw.Render()

	writeAnalysis(w, report.Analyze(rec.Report), rec.Validation)
	if rec.Report.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", rec.Report.Summary)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			limit, _ := cmd.Flags().GetInt("limit")

			st, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(cmd.Context(), email, limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reports found")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Created", "Lead", "Type", "Tier", "Delegation", "Valid"})
			for _, s := range summaries {
				tw.AppendRow(table.Row{
					s.ID,
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					s.LeadEmail,
					s.LeadType,
					s.Tier,
					fmt.Sprintf("%d%% of %d", s.DelegationPercent, s.TotalCount),
					s.Valid,
				})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().String("store", "", "Path to the report archive (SQLite)")
	cmd.Flags().String("email", "", "Only reports for this lead email")
	cmd.Flags().Int("limit", 20, "Maximum number of reports")
	return cmd
}
