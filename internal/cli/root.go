// Package cli implements mindctl, the operator tool for inspecting the questionnaire
// catalog, scoring answer sets offline and minting test tokens.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the mindctl root command.
func NewRootCommand() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "mindctl",
		Short: "Operator tooling for the mindscreen screening service",
		Long: `mindctl works against the same questionnaire catalog and token format as the
API server, without needing a running server or a model provider.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(NewQuestionnairesCommand())
	cmd.AddCommand(NewScoreCommand())
	cmd.AddCommand(NewTokenCommand())
	cmd.AddCommand(NewRenderCommand())
	return cmd
}
