package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/delegate/internal/parser"
	"github.com/harrison/delegate/internal/prompt"
)

// NewPromptCommand creates the prompt command
func NewPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt <lead-file>",
		Short: "Print the prompt a lead would be sent",
		Long: `Print the prompt built for a lead at the given tier without calling a backend.

The primary tier uses the detailed template for main leads and the
streamlined template for standard and simple leads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tierName, _ := cmd.Flags().GetString("tier")
			tier, err := prompt.ParseTier(tierName)
			if err != nil {
				return err
			}
			lead, err := parser.ParseLeadFile(args[0])
			if err != nil {
				return err
			}
			if err := lead.Validate(); err != nil {
				return fmt.Errorf("invalid lead: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.NewBuilder(nil).Build(tier, lead))
			return nil
		},
	}

	cmd.Flags().String("tier", "primary", "Prompt tier: primary, simplified, emergency")
	return cmd
}
