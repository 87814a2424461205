package cmd

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/delegate/internal/display"
	"github.com/harrison/delegate/internal/logger"
	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/parser"
)

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <lead-file-or-directory>...",
		Short: "Generate reports for many leads in parallel",
		Long: `Generate one report per lead across files and directories.

Each file may hold a single lead or an array of leads. Directories are read
in name order; files that are not JSON or YAML are skipped. Leads run in
parallel up to --concurrency. A failed lead does not stop the others; the
command exits non-zero if any lead failed.

Examples:
  delegate batch leads/
  delegate batch a.json b.yaml --concurrency 8 --format html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}

	addGenerationFlags(cmd)
	cmd.Flags().Int("concurrency", 0, "Leads generated in parallel (default from config)")
	cmd.Flags().String("output-dir", "", "Directory for rendered reports (default: .delegate/reports)")
	cmd.Flags().String("format", formatMarkdown, "Output format: md, html, json")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if err := validFormat(format); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	leads, err := loadLeads(cmd, args)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		return fmt.Errorf("no leads found in %v", args)
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	var (
		done   atomic.Int32
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.BatchConcurrency)
	for _, lead := range leads {
		g.Go(func() error {
			defer func() {
				rt.console.LogBatchProgress(int(done.Add(1)), len(leads))
			}()

			rec, err := rt.service.Generate(gctx, lead)
			if err == nil {
				rt.reportResult(rec)
				var path string
				path, err = writeRecord(gctx, cfg.OutputDir, rec, format)
				if err == nil {
					mu.Lock()
					fmt.Fprintf(out, "%s\t%s\t%s\n", rec.ID, lead.Email, path)
					mu.Unlock()
					return nil
				}
			}

			rt.log.LogError(logger.KV("lead failed", "email", lead.Email, "error", err))
			mu.Lock()
			failed = append(failed, fmt.Sprintf("%s: %v", lead.Email, err))
			mu.Unlock()
			// A failed lead must not cancel its siblings.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(failed) > 0 {
		display.Warning{
			Title: fmt.Sprintf("%d of %d leads failed", len(failed), len(leads)),
			Items: failed,
		}.Display(cmd.ErrOrStderr())
		return fmt.Errorf("%d of %d leads failed", len(failed), len(leads))
	}
	return nil
}

// loadLeads parses every path, showing per-file progress when more than
// one file is involved.
func loadLeads(cmd *cobra.Command, paths []string) ([]models.LeadContext, error) {
	w := cmd.ErrOrStderr()
	if len(paths) == 1 {
		display.DisplaySingleFile(w, paths[0])
		return parser.ParseLeadsFile(paths[0])
	}

	progress := display.NewProgressIndicator(w, len(paths))
	progress.Start()
	var leads []models.LeadContext
	for _, p := range paths {
		progress.Step(p)
		parsed, err := parser.ParseLeadsFile(p)
		if err != nil {
			return nil, err
		}
		leads = append(leads, parsed...)
	}
	progress.Complete(len(leads))
	return leads, nil
}
