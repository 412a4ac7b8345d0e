package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/app"
	"trademind/internal/models"
	"trademind/internal/router"
	"trademind/internal/stats"
	"trademind/pkg/utils"
)

// addDashboardCommands adds the dashboard and calendar views.
func addDashboardCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newDashboardCmd(a))
	rootCmd.AddCommand(newCalendarCmd(a))
}

func newDashboardCmd(a *App) *cobra.Command {
	var timeframe, tab string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the performance dashboard",
		Long: `Show the summary cards, account balance and one dashboard panel.

Timeframes: 15m, 1h, 1M, 1y, at (all time)
Tabs:       performance, profit, drawdown, positions, trades`,
		Example: `  trademind dashboard
  trademind dashboard --timeframe 1M --tab drawdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.SelectTimeframe{Timeframe: models.Timeframe(timeframe)}); err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.SelectDashboardTab{Tab: models.DashboardTab(tab)}); err != nil {
				return err
			}

			s.Advice(ctx)
			view := s.Dashboard()
			if output.IsJSON() {
				return output.JSON(view)
			}

			renderDashboard(output, s, view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", string(models.TimeframeAllTime), "summary timeframe")
	cmd.Flags().StringVar(&tab, "tab", string(models.TabPerformance), "dashboard panel")
	return cmd
}

func renderDashboard(output *Output, s *app.Session, v app.DashboardView) {
	r := v.Rollup
	output.Bold("%s  (%s)", s.T("dashboard"), r.Timeframe)
	output.Println()

	output.Box(s.T("accountBalance"), []string{
		fmt.Sprintf("%-16s %s", utils.FormatCurrency(v.Balance), output.FormatPnL(v.Balance-v.Baseline)),
	})
	output.Println()

	table := NewTable(output, s.T("netResult"), s.T("winRate"), s.T("avgGainDollar"), s.T("profitFactor"), s.T("totalTrades"))
	table.AddRow(
		output.FormatPnL(r.TotalPnL),
		utils.FormatPercent(r.WinRate),
		utils.FormatCurrency(r.AvgGain),
		utils.FormatRatio(r.ProfitFactor),
		fmt.Sprintf("%d", r.TradeCount),
	)
	table.Render()
	output.Println()

	switch v.State.DashboardTab {
	case models.TabProfit:
		renderDailyBars(output, s.T("dailyPerformance"), v.Equity)
	case models.TabDrawdown:
		renderDrawdown(output, s, v)
	case models.TabPositions:
		renderGroups(output, s.T("strategy"), v.Strategies)
		output.Println()
		renderGroups(output, s.T("asset"), v.Assets)
	case models.TabTrades:
		renderFeed(output, s, v.Feed)
	default:
		renderEquity(output, s.T("equityCurve"), v)
	}

	output.Println()
	output.Bold("%s", s.T("aiCoach"))
	output.SourceLine(SourceAI, "%s", v.Advice)
}

func renderEquity(output *Output, title string, v app.DashboardView) {
	output.Bold("%s", title)
	if len(v.Equity) == 0 {
		output.Dim("  %s", utils.FormatCurrency(v.Baseline))
		return
	}
	low, high := v.Baseline, v.Baseline
	for _, p := range v.Equity {
		low = math.Min(low, p.Balance)
		high = math.Max(high, p.Balance)
	}
	span := high - low
	for _, p := range v.Equity {
		output.Printf("  %s  %s %s\n", p.Label, Bar(p.Balance-low, span, 30), utils.FormatCurrency(p.Balance))
	}
}

func renderDailyBars(output *Output, title string, curve []stats.EquityPoint) {
	output.Bold("%s", title)
	peak := 0.0
	for _, p := range curve {
		peak = math.Max(peak, math.Abs(p.PnL))
	}
	for _, p := range curve {
		bar := Bar(math.Abs(p.PnL), peak, 20)
		output.Printf("  %s  %s %s\n", p.Label, output.PnLColored(p.PnL, bar), output.FormatPnL(p.PnL))
	}
}

func renderDrawdown(output *Output, s *app.Session, v app.DashboardView) {
	output.Bold("%s", s.T("drawdown"))
	for _, p := range v.Drawdown {
		output.Printf("  %s  %s  %s\n", p.Label, PadLeft(output.FormatPnL(p.Drawdown), 12), output.DimText(utils.FormatPercent(p.Percent)))
	}
	output.Println()
	output.Printf("  %s: %s (%s)\n", s.T("maxDrawdown"), output.FormatPnL(v.MaxDrawdown.Drawdown), utils.FormatPercent(v.MaxDrawdown.Percent))
}

func renderGroups(output *Output, heading string, groups []stats.Group) {
	table := NewTable(output, heading, "Trades", "Win %", "P&L")
	for _, g := range groups {
		table.AddRow(g.Key, fmt.Sprintf("%d", g.Trades), utils.FormatPercent(g.WinRate), output.FormatPnL(g.PnL))
	}
	table.Render()
}

func renderFeed(output *Output, s *app.Session, feed []stats.FeedItem) {
	output.Bold("%s", s.T("trades"))
	if len(feed) == 0 {
		output.Dim("  %s", s.T("noEntries"))
		return
	}
	table := NewTable(output, "Time", s.T("asset"), s.T("side"), s.T("size"), s.T("pnl"), s.T("strategy"))
	for _, item := range feed {
		t := item.Trade
		table.AddRow(
			FormatTimestamp(t.Timestamp),
			t.Asset,
			string(t.Direction),
			FormatLots(t.Lots),
			output.FormatPnL(t.PnL),
			TruncateString(t.Strategy, 18),
		)
	}
	table.Render()
}

func newCalendarCmd(a *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the monthly P&L calendar",
		Example: `  trademind calendar
  trademind calendar --month 2025-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Dispatch(ctx, router.Navigate{View: models.ViewCalendar}); err != nil {
				return err
			}

			year, m := s.CurrentMonth()
			if month != "" {
				if year, m, err = utils.ParseMonth(month); err != nil {
					return err
				}
			}

			view := s.Calendar(year, m)
			if output.IsJSON() {
				return output.JSON(view)
			}
			renderCalendar(output, s, view)
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "month to show (YYYY-MM)")
	return cmd
}

func renderCalendar(output *Output, s *app.Session, v app.CalendarView) {
	output.Bold("%s - %s", s.T("calendar"), v.Label)
	output.Println()
	output.Println(output.DimText("   Sun      Mon      Tue      Wed      Thu      Fri      Sat"))

	for _, week := range v.Weeks() {
		line := ""
		for _, cell := range week {
			line += calendarCell(output, cell)
		}
		output.Println(line)
	}

	output.Println()
	output.Printf("  %s: %s\n", s.T("netResult"), output.FormatPnL(v.Total))
}

func calendarCell(output *Output, cell *stats.CalendarCell) string {
	if cell == nil {
		return PadLeft("", 9)
	}
	text := fmt.Sprintf("%d", cell.Day)
	if cell.HasEntry {
		text = fmt.Sprintf("%d %s", cell.Day, utils.FormatCompact(cell.PnL))
	}
	text = PadLeft(text, 9)
	switch cell.Class {
	case stats.DayPositive:
		return output.Green(text)
	case stats.DayNegative:
		return output.Red(text)
	case stats.DayFlat:
		return output.Yellow(text)
	}
	return output.DimText(text)
}
