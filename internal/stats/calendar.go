package stats

import (
	"time"

	"trademind/internal/journal"
	"trademind/internal/models"
)

// CalendarCell is one day of a month grid.
type CalendarCell struct {
	Day        int      `json:"day"`
	Date       string   `json:"date"`
	HasEntry   bool     `json:"hasEntry"`
	PnL        float64  `json:"pnl"`
	TradeCount int      `json:"tradeCount"`
	Class      DayClass `json:"class"`
}

// CalendarMonth is a Sunday-first month grid. Offset is the number of
// leading empty cells before day 1.
type CalendarMonth struct {
	Year   int            `json:"year"`
	Month  time.Month     `json:"month"`
	Offset int            `json:"offset"`
	Cells  []CalendarCell `json:"cells"`
}

// Calendar lays out year/month, filling cells from journals by date.
func Calendar(journals []models.DailyJournal, year int, month time.Month) CalendarMonth {
	byDate := make(map[string]models.DailyJournal, len(journals))
	for _, j := range journals {
		byDate[j.Date] = j
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	cal := CalendarMonth{
		Year:   year,
		Month:  month,
		Offset: int(first.Weekday()),
		Cells:  make([]CalendarCell, 0, days),
	}
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		cell := CalendarCell{Day: d, Date: date, Class: DayBlank}
		if j, ok := byDate[date]; ok {
			pnl := journal.DayTotal(j)
			cell.HasEntry = true
			cell.PnL = pnl
			cell.TradeCount = len(j.Trades)
			cell.Class = ClassifyDay(pnl)
		}
		cal.Cells = append(cal.Cells, cell)
	}
	return cal
}

// MonthTotal sums the P&L of every cell with an entry.
func (c CalendarMonth) MonthTotal() float64 {
	total := 0.0
	for _, cell := range c.Cells {
		total += cell.PnL
	}
	return total
}

// Weeks splits the grid into rows of seven, padding the leading and trailing
// slots with nil.
func (c CalendarMonth) Weeks() [][]*CalendarCell {
	var weeks [][]*CalendarCell
	row := make([]*CalendarCell, 0, 7)
	for i := 0; i < c.Offset; i++ {
		row = append(row, nil)
	}
	for i := range c.Cells {
		row = append(row, &c.Cells[i])
		if len(row) == 7 {
			weeks = append(weeks, row)
			row = make([]*CalendarCell, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, nil)
		}
		weeks = append(weeks, row)
	}
	return weeks
}
