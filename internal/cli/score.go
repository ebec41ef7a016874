package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wolfman30/mindscreen/internal/questionnaire"
)

// NewScoreCommand scores a full answer set for one questionnaire.
func NewScoreCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score <questionnaire> <answers...>",
		Short: "Score a completed questionnaire",
		Long: `Score a completed questionnaire. Answers may be given as separate arguments
or as one comma-separated list:

  mindctl score GAD7 2 1 2 1 2 1 2
  mindctl score PHQ9 0,1,2,3,0,1,2,3,1`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := parseAnswers(args[1:])
			if err != nil {
				return err
			}
			res, err := questionnaire.Default().Score(args[0], answers)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(out, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func parseAnswers(args []string) ([]int, error) {
	var answers []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("answer %q is not an integer", part)
			}
			answers = append(answers, v)
		}
	}
	return answers, nil
}

func printResult(out io.Writer, res questionnaire.ScoreResult) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(out, "%s\n", res.QuestionnaireID)
	if len(res.Subscales) > 0 {
		names := make([]string, 0, len(res.Subscales))
		for name := range res.Subscales {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := res.Subscales[name]
			fmt.Fprintf(out, "  %-12s %3d  ", name, s.Score)
			severityColor(s.Severity).Fprintln(out, s.Severity)
		}
		fmt.Fprintf(out, "  %-12s %3d\n", "total", res.Total)
	} else {
		fmt.Fprintf(out, "  %-12s %3d  ", "score", res.Total)
		severityColor(res.Severity).Fprintln(out, res.Severity)
	}
	flags := make([]string, 0, len(res.Flags))
	for name, raised := range res.Flags {
		if raised {
			flags = append(flags, name)
		}
	}
	sort.Strings(flags)
	for _, name := range flags {
		color.New(color.FgRed, color.Bold).Fprintf(out, "  FLAG %s\n", name)
	}
}

func severityColor(label string) *color.Color {
	switch strings.ToLower(label) {
	case "normal", "minimal", "none", "none-minimal":
		return color.New(color.FgGreen)
	case "mild", "some ptsd symptoms":
		return color.New(color.FgYellow)
	case "moderate":
		return color.New(color.FgHiYellow)
	default:
		return color.New(color.FgRed)
	}
}
