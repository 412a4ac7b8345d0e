// Package stats derives every dashboard, calendar and list figure from the
// journal map. Functions here are pure and never touch the store.
package stats

import (
	"sort"
	"time"

	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// DefaultBaseline is the starting balance the equity curve accumulates from.
const DefaultBaseline = 47000.0

// DefaultFeedLimit is the number of trades shown in the dashboard feed.
const DefaultFeedLimit = 10

// SortChronological returns journals ordered by date ascending. Dates are
// YYYY-MM-DD, so string order is calendar order.
func SortChronological(journals []models.DailyJournal) []models.DailyJournal {
	out := append([]models.DailyJournal(nil), journals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// SortReverseChronological returns journals ordered by date descending.
func SortReverseChronological(journals []models.DailyJournal) []models.DailyJournal {
	out := append([]models.DailyJournal(nil), journals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// EquityPoint is one day on the equity curve.
type EquityPoint struct {
	Label   string  `json:"label"` // MM/DD
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
	PnL     float64 `json:"pnl"`
}

// EquityCurve accumulates day totals from baseline over journals, which must
// already be in chronological order.
func EquityCurve(sorted []models.DailyJournal, baseline float64) []EquityPoint {
	points := make([]EquityPoint, 0, len(sorted))
	balance := baseline
	for _, j := range sorted {
		pnl := journal.DayTotal(j)
		balance += pnl
		points = append(points, EquityPoint{
			Label:   utils.ShortLabel(j.Date),
			Date:    j.Date,
			Balance: balance,
			PnL:     pnl,
		})
	}
	return points
}

// DrawdownPoint is the distance below the running equity peak on one day.
type DrawdownPoint struct {
	Label    string  `json:"label"`
	Date     string  `json:"date"`
	Drawdown float64 `json:"drawdown"` // <= 0
	Percent  float64 `json:"percent"`  // <= 0, relative to the peak
}

// Drawdown converts an equity curve into a peak-to-trough series. The
// baseline counts as the first peak.
func Drawdown(curve []EquityPoint, baseline float64) []DrawdownPoint {
	out := make([]DrawdownPoint, 0, len(curve))
	peak := baseline
	for _, p := range curve {
		if p.Balance > peak {
			peak = p.Balance
		}
		dd := p.Balance - peak
		pct := 0.0
		if peak > 0 {
			pct = dd / peak * 100
		}
		out = append(out, DrawdownPoint{Label: p.Label, Date: p.Date, Drawdown: dd, Percent: pct})
	}
	return out
}

// MaxDrawdown returns the deepest point of a drawdown series (0 when flat).
func MaxDrawdown(series []DrawdownPoint) DrawdownPoint {
	var worst DrawdownPoint
	for _, p := range series {
		if p.Drawdown < worst.Drawdown {
			worst = p
		}
	}
	return worst
}

// FeedItem is a trade tagged with the day it was journaled on.
type FeedItem struct {
	Date  string       `json:"date"`
	Trade models.Trade `json:"trade"`
}

// TradeFeed flattens every trade and orders them by timestamp descending.
// Timestamps compare as instants; unparseable ones fall back to string order.
// A limit of 0 returns everything.
func TradeFeed(journals []models.DailyJournal, limit int) []FeedItem {
	var items []FeedItem
	for _, j := range SortChronological(journals) {
		for _, t := range j.Trades {
			items = append(items, FeedItem{Date: j.Date, Trade: t})
		}
	}
	at := make([]time.Time, len(items))
	for i, it := range items {
		at[i], _ = time.Parse(time.RFC3339Nano, it.Trade.Timestamp)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := at[idx[a]], at[idx[b]]
		if ta.IsZero() || tb.IsZero() {
			return items[idx[a]].Trade.Timestamp > items[idx[b]].Trade.Timestamp
		}
		return ta.After(tb)
	})
	ordered := make([]FeedItem, len(items))
	for i, k := range idx {
		ordered[i] = items[k]
	}
	items = ordered
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// AllTrades flattens every trade in chronological journal order.
func AllTrades(journals []models.DailyJournal) []models.Trade {
	var trades []models.Trade
	for _, j := range SortChronological(journals) {
		trades = append(trades, j.Trades...)
	}
	return trades
}

// DayClass is the three-way calendar colouring of a day.
type DayClass string

const (
	DayPositive DayClass = "positive"
	DayNegative DayClass = "negative"
	DayFlat     DayClass = "flat"
	DayBlank    DayClass = "blank"
)

// ClassifyDay colours a day total.
func ClassifyDay(pnl float64) DayClass {
	switch {
	case pnl > 0:
		return DayPositive
	case pnl < 0:
		return DayNegative
	default:
		return DayFlat
	}
}

// IsWinningDay is the journal list badge rule; a breakeven day counts as a win.
func IsWinningDay(j models.DailyJournal) bool {
	return journal.DayTotal(j) >= 0
}

// JournalRow is one line of the journal list view.
type JournalRow struct {
	Date       string         `json:"date"`
	Win        bool           `json:"win"`
	Emotion    models.Emotion `json:"emotion"`
	Discipline int            `json:"disciplineScore"`
	Notes      string         `json:"notes"`
	TradeCount int            `json:"tradeCount"`
	PnL        float64        `json:"pnl"`
}

// JournalList builds list rows, newest first.
func JournalList(journals []models.DailyJournal) []JournalRow {
	sorted := SortReverseChronological(journals)
	rows := make([]JournalRow, 0, len(sorted))
	for _, j := range sorted {
		rows = append(rows, JournalRow{
			Date:       j.Date,
			Win:        IsWinningDay(j),
			Emotion:    j.Emotion,
			Discipline: j.DisciplineScore,
			Notes:      j.Notes,
			TradeCount: len(j.Trades),
			PnL:        journal.DayTotal(j),
		})
	}
	return rows
}
