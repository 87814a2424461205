package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for delegate
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delegate",
		Short: "Generate personalized task delegation reports",
		Long: `Delegate turns a lead's intake answers into a delegation report:
thirty recurring tasks split across daily, weekly and monthly cadences,
each marked as handed to an assistant or kept by the owner.

Reports come from an LLM backend (Gemini API or the claude CLI). When a
reply fails to parse, generation escalates through simpler prompts. Every
report is validated, optionally repaired, archived in SQLite and rendered
as Markdown or HTML.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .delegate/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewBatchCommand())
	cmd.AddCommand(NewPromptCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewRepairCommand())
	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}
