package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/app"
	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/internal/router"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, a *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal management",
		Long:  "Record, review, and annotate your trading days.",
	}

	cmd.AddCommand(newJournalListCmd(a))
	cmd.AddCommand(newJournalShowCmd(a))
	cmd.AddCommand(newJournalAddTradeCmd(a))
	cmd.AddCommand(newJournalRemoveTradeCmd(a))
	cmd.AddCommand(newJournalPsychCmd(a))
	cmd.AddCommand(newJournalRefineCmd(a))
	cmd.AddCommand(newJournalExportCmd(a))
	cmd.AddCommand(newJournalUndoCmd(a))

	rootCmd.AddCommand(cmd)
}

func journalContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func newJournalListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List journal days, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.Navigate{View: models.ViewJournal}); err != nil {
				return err
			}

			rows := s.JournalList()
			if output.IsJSON() {
				return output.JSON(rows)
			}

			output.Bold("%s", s.T("journal"))
			output.Println()
			if len(rows) == 0 {
				output.Info("%s", s.T("noEntries"))
				return nil
			}

			table := NewTable(output, "Date", "", s.T("emotion"), s.T("discipline"), s.T("trades"), s.T("pnl"), s.T("notes"))
			for _, r := range rows {
				badge := output.Red(s.T("loss"))
				if r.Win {
					badge = output.Green(s.T("win"))
				}
				emotion := s.T("emotion" + string(r.Emotion))
				table.AddRow(
					r.Date,
					badge,
					emotion,
					FormatScore(r.Discipline),
					fmt.Sprintf("%d", r.TradeCount),
					output.FormatPnL(r.PnL),
					TruncateString(r.Notes, 40),
				)
			}
			table.Render()

			if at, ok := s.SavedAt(ctx); ok {
				output.Println()
				output.Dim("Last saved %s", FormatTimestamp(at.Format(time.RFC3339)))
			}
			return nil
		},
	}
}

func newJournalShowCmd(a *App) *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "show <date>",
		Short: "Show one journal day",
		Long: `Open a journal day, creating an empty entry when none exists.

Tabs: trades, psychology, analysis`,
		Example: `  trademind journal show 2025-01-15
  trademind journal show 2025-01-15 --tab psychology`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			date := args[0]
			if _, err := s.Dispatch(ctx, router.OpenDay{Date: date}); err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.SelectDayTab{Tab: models.DayTab(tab)}); err != nil {
				return err
			}

			view, err := s.Day(date)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(view)
			}
			renderDay(output, s, view, s.State().DayTab)
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", string(models.DayTabTrades), "panel to show")
	return cmd
}

func renderDay(output *Output, s *app.Session, v app.DayView, tab models.DayTab) {
	j := v.Journal
	output.Bold("%s", FormatDate(j.Date))
	output.Printf("  %s: %s   %s: %s\n", s.T("netResult"), output.FormatPnL(v.Total), s.T("emotion"), v.EmotionLabel)
	output.Println()

	switch tab {
	case models.DayTabPsychology:
		output.Bold("%s", s.T("psychology"))
		output.Printf("  %s: %s\n", s.T("discipline"), FormatScore(j.DisciplineScore))
		output.Printf("  %s: %d/4\n", s.T("checklist"), v.ChecklistPassed)
		for _, item := range []struct {
			key string
			ok  bool
		}{
			{"followedPlan", j.Checklist.FollowedPlan},
			{"controlledRisk", j.Checklist.ControlledRisk},
			{"noRevengeTrade", j.Checklist.NoRevengeTrade},
			{"properSetup", j.Checklist.ProperSetup},
		} {
			mark := output.Red("✗")
			if item.ok {
				mark = output.Green("✓")
			}
			output.Printf("    %s %s\n", mark, s.T(item.key))
		}
		output.Println()
		output.Bold("%s", s.T("notes"))
		if j.Notes == "" {
			output.Dim("  -")
		} else {
			output.Printf("  %s\n", j.Notes)
		}
		if v.CanRefine {
			output.Dim("  Tip: trademind journal refine %s", j.Date)
		}
	case models.DayTabAnalysis:
		output.Bold("%s", s.T("analysis"))
		renderGroups(output, s.T("strategy"), v.Breakdown)
	default:
		output.Bold("%s", s.T("trades"))
		if len(j.Trades) == 0 {
			output.Dim("  %s", s.T("noEntries"))
			return
		}
		table := NewTable(output, "ID", s.T("asset"), s.T("side"), s.T("size"), "Entry", "Exit", "Held", s.T("pnl"), s.T("strategy"))
		for _, t := range j.Trades {
			table.AddRow(
				t.ID,
				t.Asset,
				string(t.Direction),
				FormatLots(t.Lots),
				FormatPrice(t.EntryPrice),
				FormatPrice(t.ExitPrice),
				FormatMinutes(t.DurationMinutes),
				output.FormatPnL(t.PnL),
				TruncateString(t.Strategy, 18),
			)
		}
		table.Render()
	}
}

func newJournalAddTradeCmd(a *App) *cobra.Command {
	var (
		in        journal.TradeInput
		direction string
		pnl       float64
		entry     float64
		exit      float64
		duration  int
	)

	cmd := &cobra.Command{
		Use:   "add-trade <date>",
		Short: "Record a trade on a journal day",
		Example: `  trademind journal add-trade 2025-01-15 --asset XAUUSD --direction Buy --lots 1 --pnl 750
  trademind journal add-trade 2025-01-16 --asset NQ --direction sell --lots 2 --pnl -400 --strategy "ORB"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			if direction != "" {
				d, ok := models.ParseDirection(direction)
				if !ok {
					return fmt.Errorf("invalid direction %q: must be Buy or Sell", direction)
				}
				in.Direction = d
			}
			if cmd.Flags().Changed("pnl") {
				in.PnL = &pnl
			}
			if cmd.Flags().Changed("entry") {
				in.EntryPrice = &entry
			}
			if cmd.Flags().Changed("exit") {
				in.ExitPrice = &exit
			}
			if cmd.Flags().Changed("duration") {
				in.DurationMinutes = &duration
			}

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			trade, err := s.AddTrade(ctx, args[0], in)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade %s recorded on %s", trade.ID, args[0])
			output.Printf("  %s %s x%s  %s\n", trade.Direction, trade.Asset, FormatLots(trade.Lots), output.FormatPnL(trade.PnL))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Asset, "asset", "", "instrument symbol (required)")
	cmd.Flags().StringVar(&direction, "direction", "Buy", "Buy or Sell")
	cmd.Flags().Float64Var(&in.Lots, "lots", 0, "position size in lots (required)")
	cmd.Flags().Float64Var(&pnl, "pnl", 0, "realized profit or loss (required)")
	cmd.Flags().StringVar(&in.Strategy, "strategy", "", "strategy name")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price")
	cmd.Flags().IntVar(&duration, "duration", 0, "holding time in minutes")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "trade notes")
	cmd.Flags().StringVar(&in.Screenshot, "screenshot", "", "screenshot path or URL")
	cmd.MarkFlagRequired("asset")
	cmd.MarkFlagRequired("lots")
	cmd.MarkFlagRequired("pnl")

	return cmd
}

func newJournalRemoveTradeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-trade <date> <id>",
		Short: "Delete a trade from a journal day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			removed, err := s.RemoveTrade(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"date": args[0], "id": args[1], "removed": removed})
			}
			if !removed {
				output.Warning("No trade %s on %s", args[1], args[0])
				return nil
			}
			output.Success("✓ Trade %s removed from %s", args[1], args[0])
			return nil
		},
	}
}

func newJournalPsychCmd(a *App) *cobra.Command {
	var (
		emotion    string
		discipline int
		notes      string
		checklist  models.Checklist
	)

	cmd := &cobra.Command{
		Use:   "psych <date>",
		Short: "Update emotion, discipline, notes and checklist",
		Long: `Update the psychology side of a journal day. Only the flags given are changed.

Emotions: Calm, Greedy, Fearful, Excited, Frustrated, Disciplined`,
		Example: `  trademind journal psych 2025-01-15 --emotion calm --discipline 8
  trademind journal psych 2025-01-15 --followed-plan --no-revenge=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			flags := cmd.Flags()
			var e models.Emotion
			if flags.Changed("emotion") {
				var ok bool
				if e, ok = models.ParseEmotion(emotion); !ok {
					return fmt.Errorf("unknown emotion %q", emotion)
				}
			}

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			j, err := s.UpdateDay(ctx, args[0], func(j models.DailyJournal) (models.DailyJournal, error) {
				if flags.Changed("emotion") {
					j = journal.WithEmotion(j, e)
				}
				if flags.Changed("discipline") {
					j = journal.WithDisciplineScore(j, discipline)
				}
				if flags.Changed("notes") {
					j = journal.WithNotes(j, notes)
				}
				c := j.Checklist
				if flags.Changed("followed-plan") {
					c.FollowedPlan = checklist.FollowedPlan
				}
				if flags.Changed("controlled-risk") {
					c.ControlledRisk = checklist.ControlledRisk
				}
				if flags.Changed("no-revenge") {
					c.NoRevengeTrade = checklist.NoRevengeTrade
				}
				if flags.Changed("proper-setup") {
					c.ProperSetup = checklist.ProperSetup
				}
				return journal.WithChecklist(j, c), nil
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(j)
			}
			output.Success("✓ %s updated", j.Date)
			output.Printf("  %s: %s  %s: %s  %s: %d/4\n",
				s.T("emotion"), s.T("emotion"+string(j.Emotion)),
				s.T("discipline"), FormatScore(j.DisciplineScore),
				s.T("checklist"), j.Checklist.Passed())
			return nil
		},
	}

	cmd.Flags().StringVar(&emotion, "emotion", "", "emotion for the day")
	cmd.Flags().IntVar(&discipline, "discipline", 5, "discipline score 1-10")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&checklist.FollowedPlan, "followed-plan", true, "followed the plan")
	cmd.Flags().BoolVar(&checklist.ControlledRisk, "controlled-risk", true, "controlled risk")
	cmd.Flags().BoolVar(&checklist.NoRevengeTrade, "no-revenge", true, "no revenge trading")
	cmd.Flags().BoolVar(&checklist.ProperSetup, "proper-setup", true, "waited for a proper setup")

	return cmd
}

func newJournalRefineCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refine <date>",
		Short: "Rewrite the day's notes with the AI advisor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			notes, changed, err := s.RefineNotes(ctx, args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"date": args[0], "notes": notes, "refined": changed})
			}
			if !changed {
				output.Warning("Notes left unchanged (too short or advisor unavailable)")
				return nil
			}
			output.Success("✓ Notes refined")
			output.SourceLine(SourceAI, "%s", notes)
			return nil
		},
	}
}

func newJournalUndoCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the journal as it was before the last change",
		Long: `Restore the journal snapshot saved before the most recent change. Running
undo twice puts the change back. Needs the sqlite storage backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := journalContext()
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			days, err := s.Undo(ctx)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"days": days, "reverted": true})
			}
			output.Success("✓ Journal restored (%d days)", days)
			return nil
		},
	}
}

func newJournalExportCmd(a *App) *cobra.Command {
	var format, path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal as JSON or CSV",
		Example: `  trademind journal export > journal.json
  trademind journal export --format csv --out trades.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := journalContext()
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "json":
				data, err := s.Snapshot()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			case "csv":
				return writeTradesCSV(csv.NewWriter(w), s.Journals())
			default:
				return fmt.Errorf("unknown export format %q: use json or csv", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or csv")
	cmd.Flags().StringVarP(&path, "out", "o", "", "write to file instead of stdout")
	return cmd
}

// writeTradesCSV writes one row per trade with its day's psychology fields.
func writeTradesCSV(w *csv.Writer, journals []models.DailyJournal) error {
	header := []string{"date", "id", "asset", "direction", "lots", "entry", "exit", "pnl", "strategy", "duration_minutes", "emotion", "discipline"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, j := range journals {
		for _, t := range j.Trades {
			row := []string{
				j.Date,
				t.ID,
				t.Asset,
				string(t.Direction),
				FormatLots(t.Lots),
				optionalFloat(t.EntryPrice),
				optionalFloat(t.ExitPrice),
				fmt.Sprintf("%.2f", t.PnL),
				t.Strategy,
				optionalInt(t.DurationMinutes),
				string(j.Emotion),
				fmt.Sprintf("%d", j.DisciplineScore),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
