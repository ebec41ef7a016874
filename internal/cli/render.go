package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wolfman30/mindscreen/internal/reports"
)

// NewRenderCommand renders a stored report JSON document.
func NewRenderCommand() *cobra.Command {
	var html bool
	cmd := &cobra.Command{
		Use:   "render <report.json>",
		Short: "Render a report as markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read report: %w", err)
			}
			var report reports.Report
			if err := json.Unmarshal(data, &report); err != nil {
				return fmt.Errorf("parse report: %w", err)
			}
			out := cmd.OutOrStdout()
			if !html {
				fmt.Fprint(out, reports.RenderMarkdown(&report))
				return nil
			}
			rendered, err := reports.RenderHTML(&report)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "Render HTML instead of markdown")
	return cmd
}
