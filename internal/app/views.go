package app

import (
	"time"
	"unicode/utf8"

	"trademind/internal/agents"
	"trademind/internal/errors"
	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/internal/router"
	"trademind/internal/stats"
	"trademind/pkg/utils"
)

// DashboardView is everything the dashboard renders.
type DashboardView struct {
	State       router.State          `json:"state"`
	Rollup      stats.Rollup          `json:"rollup"`
	Baseline    float64               `json:"baseline"`
	Balance     float64               `json:"balance"`
	Equity      []stats.EquityPoint   `json:"equity"`
	Drawdown    []stats.DrawdownPoint `json:"drawdown"`
	MaxDrawdown stats.DrawdownPoint   `json:"maxDrawdown"`
	Feed        []stats.FeedItem      `json:"feed"`
	Summary     stats.Summary         `json:"summary"`
	Strategies  []stats.Group         `json:"strategies"`
	Assets      []stats.Group         `json:"assets"`
	Advice      string                `json:"advice"`
}

// Dashboard builds the dashboard for the current timeframe from a fresh
// snapshot of the store. Advice is the cached text; call Advice first to
// refresh it.
func (s *Session) Dashboard() DashboardView {
	s.mu.Lock()
	state := s.state
	advice := s.advice
	s.mu.Unlock()

	return s.buildDashboard(state, advice)
}

// DashboardWith builds the dashboard as if tf and tab were selected without
// touching the navigation state. Empty values keep the current selection.
func (s *Session) DashboardWith(tf models.Timeframe, tab models.DashboardTab) (DashboardView, error) {
	s.mu.Lock()
	state := s.state
	advice := s.advice
	s.mu.Unlock()

	var err error
	if tf != "" {
		if state, _, err = router.Reduce(state, router.SelectTimeframe{Timeframe: tf}); err != nil {
			return DashboardView{}, err
		}
	}
	if tab != "" {
		if state, _, err = router.Reduce(state, router.SelectDashboardTab{Tab: tab}); err != nil {
			return DashboardView{}, err
		}
	}
	return s.buildDashboard(state, advice), nil
}

func (s *Session) buildDashboard(state router.State, advice string) DashboardView {
	journals := s.store.All()
	sorted := stats.SortChronological(journals)
	trades := stats.AllTrades(sorted)

	var rollup stats.Rollup
	if s.opts.TimeframeMode == ModeRange {
		rollup = stats.RangeRollup(state.Timeframe, trades, s.opts.Now(), s.opts.Jitter)
	} else {
		rollup = stats.ScaledRollup(state.Timeframe, trades, s.opts.Jitter)
	}

	equity := stats.EquityCurve(sorted, s.baseline)
	drawdown := stats.Drawdown(equity, s.baseline)
	balance := s.baseline
	if len(equity) > 0 {
		balance = equity[len(equity)-1].Balance
	}

	return DashboardView{
		State:       state,
		Rollup:      rollup,
		Baseline:    s.baseline,
		Balance:     balance,
		Equity:      equity,
		Drawdown:    drawdown,
		MaxDrawdown: stats.MaxDrawdown(drawdown),
		Feed:        stats.TradeFeed(journals, s.opts.FeedLimit),
		Summary:     stats.Summarize(journals),
		Strategies:  stats.Breakdown(trades, stats.ByStrategy),
		Assets:      stats.Breakdown(trades, stats.ByAsset),
		Advice:      advice,
	}
}

// CalendarView is a month grid with its running total.
type CalendarView struct {
	stats.CalendarMonth
	Total float64 `json:"total"`
	Label string  `json:"label"`
}

// Calendar builds the grid for year/month.
func (s *Session) Calendar(year int, month time.Month) CalendarView {
	cal := stats.Calendar(s.store.All(), year, month)
	return CalendarView{
		CalendarMonth: cal,
		Total:         cal.MonthTotal(),
		Label:         time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
	}
}

// CurrentMonth returns the year and month of the session clock.
func (s *Session) CurrentMonth() (int, time.Month) {
	now := s.opts.Now()
	return now.Year(), now.Month()
}

// JournalList returns one row per day, newest first.
func (s *Session) JournalList() []stats.JournalRow {
	return stats.JournalList(s.store.All())
}

// DayView is the journal-day detail.
type DayView struct {
	Journal         models.DailyJournal `json:"journal"`
	Total           float64             `json:"total"`
	Winning         bool                `json:"winning"`
	Strategies      []string            `json:"strategies"`
	Breakdown       []stats.Group       `json:"breakdown"`
	ChecklistPassed int                 `json:"checklistPassed"`
	EmotionLabel    string              `json:"emotionLabel"`
	CanRefine       bool                `json:"canRefine"`
}

// Day returns the detail view for date. It does not create the entry; use
// Dispatch(router.OpenDay{...}) for that.
func (s *Session) Day(date string) (DayView, error) {
	if !utils.ValidDate(date) {
		return DayView{}, errors.NewValidationError("date", date, "expected YYYY-MM-DD")
	}
	j, ok := s.store.Get(date)
	if !ok {
		return DayView{}, errors.Wrapf(errors.ErrJournalNotFound, "date %s", date)
	}
	return DayView{
		Journal:         j,
		Total:           journal.DayTotal(j),
		Winning:         stats.IsWinningDay(j),
		Strategies:      journal.Strategies(j),
		Breakdown:       stats.Breakdown(j.Trades, stats.ByStrategy),
		ChecklistPassed: j.Checklist.Passed(),
		EmotionLabel:    s.table.Emotion(s.Language(), j.Emotion),
		CanRefine:       utf8.RuneCountInString(j.Notes) >= agents.MinRefineLength,
	}, nil
}

// Journals returns a copy of every stored day.
func (s *Session) Journals() []models.DailyJournal {
	return stats.SortChronological(s.store.All())
}

// Snapshot serializes the store.
func (s *Session) Snapshot() ([]byte, error) {
	return s.store.Snapshot()
}
