package models

// Trade is a single closed position recorded against a journal day.
// Trades are immutable once saved; edits replace the whole entry.
type Trade struct {
	ID              string    `json:"id"`
	Asset           string    `json:"asset"`
	Direction       Direction `json:"direction"`
	EntryPrice      *float64  `json:"entryPrice,omitempty"`
	ExitPrice       *float64  `json:"exitPrice,omitempty"`
	Lots            float64   `json:"lots"`
	PnL             float64   `json:"pnl"`
	Strategy        string    `json:"strategy"`
	Timestamp       string    `json:"timestamp"` // RFC 3339
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	Screenshot      string    `json:"screenshot,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// IsWin reports whether the trade closed in profit. Breakeven is not a win.
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// Checklist holds the four daily discipline flags.
type Checklist struct {
	FollowedPlan   bool `json:"followedPlan"`
	ControlledRisk bool `json:"controlledRisk"`
	NoRevengeTrade bool `json:"noRevengeTrade"`
	ProperSetup    bool `json:"properSetup"`
}

// Passed counts the satisfied checklist items.
func (c Checklist) Passed() int {
	n := 0
	for _, ok := range []bool{c.FollowedPlan, c.ControlledRisk, c.NoRevengeTrade, c.ProperSetup} {
		if ok {
			n++
		}
	}
	return n
}

// DailyJournal is the per-date record of trades and psychology.
type DailyJournal struct {
	Date            string    `json:"date"` // YYYY-MM-DD
	Trades          []Trade   `json:"trades"`
	Emotion         Emotion   `json:"emotion"`
	Notes           string    `json:"notes"`
	DisciplineScore int       `json:"disciplineScore"` // 1-10
	Checklist       Checklist `json:"checklist"`
}

// Journals is the date-keyed collection held by the store.
type Journals map[string]DailyJournal
