package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/agents"
	"trademind/internal/app"
	"trademind/internal/models"
	"trademind/internal/router"
)

const advisoryTimeout = 2 * time.Minute

// addAdvisorCommands adds the AI coaching, macro and scanner commands.
func addAdvisorCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newCoachCmd(a))
	rootCmd.AddCommand(newMacroCmd(a))
	rootCmd.AddCommand(newScannersCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
}

func newCoachCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "coach",
		Short: "Get a coaching sentence from your recent journal",
		Long: `Send the five most recent journal days to the AI advisor and print one
actionable sentence about your trading psychology.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), advisoryTimeout)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			advice := s.RefreshAdvice(ctx)

			if output.IsJSON() {
				return output.JSON(map[string]string{"advice": advice, "provider": s.Provider()})
			}
			output.Bold("%s", s.T("aiCoach"))
			output.SourceLine(SourceAI, "%s", advice)
			output.Dim("  via %s", s.Provider())
			return nil
		},
	}
}

func newMacroCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "macro",
		Short: "Search-backed macro briefing for gold before the US open",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), advisoryTimeout)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.Navigate{View: models.ViewAgents}); err != nil {
				return err
			}
			report := s.Macro(ctx)

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, s, s.T("macroContext"), report)
			return nil
		},
	}
}

func newScannersCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scanners",
		Short: "List scanner presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			presets := agents.Scanners()
			if output.IsJSON() {
				return output.JSON(presets)
			}

			output.Bold("%s", s.T("marketScanners"))
			output.Println()
			for _, sc := range presets {
				title := s.T(sc.TitleKey)
				if sc.Editable {
					title += output.DimText("  (editable: --rule)")
				}
				output.Printf("%s %s\n", output.Cyan(PadRight(sc.ID, 10)), output.BoldText(title))
				for _, rule := range sc.Display {
					output.Printf("    • %s\n", rule)
				}
			}
			output.Println()
			output.Dim("Run: trademind scan <id>")
			return nil
		},
	}
}

func newScanCmd(a *App) *cobra.Command {
	var rules []string

	cmd := &cobra.Command{
		Use:   "scan <scanner>",
		Short: "Run a scanner preset through the search-backed advisor",
		Example: `  trademind scan momentum
  trademind scan finviz --rule "RSI(14) below 30" --rule "Price above SMA200"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), advisoryTimeout)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.Navigate{View: models.ViewScanners}); err != nil {
				return err
			}

			var custom []string
			for _, r := range rules {
				custom = append(custom, agents.ParseRules(r)...)
			}
			sc, report, err := s.Scan(ctx, strings.ToLower(args[0]), custom)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"scanner": sc, "report": report})
			}
			output.Bold("%s: %s", s.T("liveScan"), s.T(sc.TitleKey))
			for _, rule := range sc.Rules {
				output.Dim("  • %s", rule)
			}
			output.Println()
			renderReport(output, s, "", report)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rules, "rule", nil, "custom rule (editable scanners only, repeatable)")
	return cmd
}

func renderReport(output *Output, s *app.Session, title string, r agents.Report) {
	if title != "" {
		output.Bold("%s", title)
	}
	source := SourceAI
	if r.Fallback {
		source = SourceLocal
	}
	for _, line := range strings.Split(strings.TrimSpace(r.Text), "\n") {
		output.SourceLine(source, "%s", line)
	}
	if len(r.Sources) == 0 {
		return
	}
	output.Println()
	output.Bold("%s", s.T("sources"))
	for i, src := range r.Sources {
		output.Printf("  %d. %s\n     %s\n", i+1, src.Title, output.DimText(src.URL))
	}
}
