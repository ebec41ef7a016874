package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wolfman30/mindscreen/internal/questionnaire"
)

// NewQuestionnairesCommand lists the registered instruments.
func NewQuestionnairesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "questionnaires",
		Aliases: []string{"q"},
		Short:   "List available questionnaires",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			bold := color.New(color.FgCyan, color.Bold)
			for _, s := range questionnaire.Default().List() {
				bold.Fprintf(out, "%-6s", s.ID)
				fmt.Fprintf(out, " %s (%d items, answers %d-%d)\n", s.Name, s.ItemCount, s.MinValue, s.MaxValue)
				if s.Description != "" {
					fmt.Fprintf(out, "       %s\n", s.Description)
				}
			}
			return nil
		},
	}
}
