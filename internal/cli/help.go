package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newQuickstartCmd(a))
}

type commandEntry struct {
	cmd  string
	desc string
}

type commandCategory struct {
	name     string
	commands []commandEntry
}

var commandCategories = []commandCategory{
	{
		name: "Dashboard",
		commands: []commandEntry{
			{"dashboard", "Summary cards, balance and equity curve"},
			{"dashboard -t 1M --tab drawdown", "Timeframe and panel selection"},
			{"calendar [--month YYYY-MM]", "Monthly P&L calendar"},
		},
	},
	{
		name: "Journal",
		commands: []commandEntry{
			{"journal list", "All journal days, newest first"},
			{"journal show <date>", "Trades, psychology and analysis for a day"},
			{"journal add-trade <date>", "Record a trade"},
			{"journal remove-trade <date> <id>", "Delete a trade"},
			{"journal psych <date>", "Emotion, discipline, notes, checklist"},
			{"journal refine <date>", "AI rewrite of the day's notes"},
			{"journal export", "Dump the journal as JSON or CSV"},
			{"journal undo", "Revert the last change (sqlite)"},
		},
	},
	{
		name: "AI Advisor",
		commands: []commandEntry{
			{"coach", "One coaching sentence from recent days"},
			{"macro", "Gold macro briefing with sources"},
			{"scanners", "List scanner presets"},
			{"scan <id> [--rule ...]", "Run a scanner preset"},
		},
	},
	{
		name: "Tools",
		commands: []commandEntry{
			{"breakout <asset>", "Opening-range breakout calculator"},
			{"lang [tag]", "Show or switch the UI language"},
			{"serve", "JSON HTTP API with scheduled advice refresh"},
			{"config show/path/validate", "Configuration"},
		},
	},
	{
		name: "Help",
		commands: []commandEntry{
			{"help <command>", "Detailed help"},
			{"commands", "List all commands"},
			{"examples", "Common workflows"},
			{"quickstart", "New user guide"},
			{"version", "Version information"},
		},
	},
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List all commands by category",
		Long:  "Display all available commands organized by category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("TradeMind Commands")
			output.Println()

			for _, cat := range commandCategories {
				output.Bold("%s", cat.name)
				for _, c := range cat.commands {
					output.Printf("  %s %s\n", output.Cyan(PadRight(c.cmd, 34)), c.desc)
				}
				output.Println()
			}

			output.Dim("Use 'trademind help <command>' for detailed help on any command")
			return nil
		},
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		Long:  "Display examples of common journaling workflows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Before the Open",
					commands: []string{
						"trademind macro                  # Gold macro briefing",
						"trademind scan open              # Market open setups",
						"trademind breakout XAU           # Range, bias and size",
					},
				},
				{
					title: "Log a Trade",
					commands: []string{
						"trademind journal add-trade 2025-01-15 --asset XAUUSD --direction Buy --lots 1 --pnl 750 --strategy ORB",
						"trademind journal show 2025-01-15 # Verify the day",
					},
				},
				{
					title: "End of Day Review",
					commands: []string{
						"trademind journal psych 2025-01-15 --emotion calm --discipline 8 --notes 'Waited for the retest'",
						"trademind journal refine 2025-01-15 # Tidy the notes",
						"trademind coach                  # Psychology feedback",
					},
				},
				{
					title: "Weekly Review",
					commands: []string{
						"trademind dashboard --tab positions # Strategy and asset breakdown",
						"trademind dashboard --tab drawdown  # Peak-to-trough",
						"trademind calendar               # Green and red days",
						"trademind journal export -f csv -o trades.csv",
					},
				},
				{
					title: "Custom Scan",
					commands: []string{
						"trademind scan finviz --rule 'RSI(14) below 30' --rule 'Price above SMA200'",
					},
				},
			}

			for _, ex := range examples {
				output.Bold("%s", ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}

			return nil
		},
	}
}

func newQuickstartCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quickstart",
		Short: "New user guide",
		Long:  "Step-by-step guide for new users.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("TradeMind - Quick Start Guide")
			output.Println()

			steps := []struct {
				step  int
				title string
				desc  string
				cmd   string
			}{
				{1, "Configure the Advisor", "Put a Gemini or OpenAI key in credentials.toml, or export GEMINI_API_KEY.", "trademind config path  # Shows config directory"},
				{2, "Look Around", "Two sample days are loaded on first run.", "trademind dashboard"},
				{3, "Record a Trade", "Log a closed position against a date.", "trademind journal add-trade 2025-01-20 --asset NQ --lots 1 --pnl 300"},
				{4, "Journal Your Psychology", "Rate emotion and discipline, tick the checklist.", "trademind journal psych 2025-01-20 --emotion disciplined --discipline 9"},
				{5, "Ask the Coach", "Get feedback on your last five days.", "trademind coach"},
				{6, "Open the API", "Serve the same data over HTTP.", "trademind serve"},
			}

			for _, s := range steps {
				output.Printf("%s Step %d: %s\n", output.Cyan("→"), s.step, output.BoldText(s.title))
				output.Printf("  %s\n", s.desc)
				output.Printf("  %s\n\n", output.DimText(s.cmd))
			}

			output.Bold("Configuration Files")
			output.Println()
			output.Printf("  %s - API keys (Gemini, OpenAI)\n", output.Cyan("credentials.toml"))
			output.Printf("  %s - Journal, storage, advisor, server settings\n", output.Cyan("config.toml"))
			if a.Config != nil {
				output.Printf("  %s\n", output.DimText(a.Config.Dir()))
			}
			output.Println()

			output.Bold("Getting Help")
			output.Println()
			output.Printf("  %s - List all commands\n", output.Cyan("trademind commands"))
			output.Printf("  %s - Common workflows\n", output.Cyan("trademind examples"))
			output.Printf("  %s - Help for any command\n", output.Cyan("trademind help <command>"))
			output.Println()

			output.Bold("Important Notes")
			output.Println()
			output.Printf("  %s Without an API key, AI features print fallback text\n", output.Yellow("⚠"))
			output.Printf("  %s Keep credentials.toml private (mode 0600)\n", output.Yellow("⚠"))

			return nil
		},
	}
}
