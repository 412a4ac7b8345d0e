// Package journal holds the pure operations on a single trading day:
// creating entries, adding and removing trades, and editing psychology.
// Every function returns a new value and leaves its input untouched.
package journal

import (
	"trademind/internal/models"
)

// Default values for a freshly created day.
const (
	DefaultEmotion         = models.EmotionCalm
	DefaultDisciplineScore = 10
	MinDisciplineScore     = 1
	MaxDisciplineScore     = 10
)

// NewDailyJournal returns the default entry for date: no trades, calm, full
// discipline score and every checklist item ticked.
func NewDailyJournal(date string) models.DailyJournal {
	return models.DailyJournal{
		Date:            date,
		Trades:          []models.Trade{},
		Emotion:         DefaultEmotion,
		Notes:           "",
		DisciplineScore: DefaultDisciplineScore,
		Checklist: models.Checklist{
			FollowedPlan:   true,
			ControlledRisk: true,
			NoRevengeTrade: true,
			ProperSetup:    true,
		},
	}
}

// AddTrade returns a copy of j with t appended.
func AddTrade(j models.DailyJournal, t models.Trade) models.DailyJournal {
	out := Clone(j)
	out.Trades = append(out.Trades, t)
	return out
}

// RemoveTrade returns a copy of j without the trade carrying id. An unknown
// id yields an equal copy.
func RemoveTrade(j models.DailyJournal, id string) models.DailyJournal {
	out := Clone(j)
	kept := make([]models.Trade, 0, len(j.Trades))
	for _, t := range j.Trades {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	out.Trades = kept
	return out
}

// DayTotal sums the P&L of every trade on the day.
func DayTotal(j models.DailyJournal) float64 {
	total := 0.0
	for _, t := range j.Trades {
		total += t.PnL
	}
	return total
}

// FindTrade looks a trade up by id.
func FindTrade(j models.DailyJournal, id string) (models.Trade, bool) {
	for _, t := range j.Trades {
		if t.ID == id {
			return t, true
		}
	}
	return models.Trade{}, false
}

// Strategies returns the distinct strategy names used on the day in first-seen order.
func Strategies(j models.DailyJournal) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range j.Trades {
		if seen[t.Strategy] {
			continue
		}
		seen[t.Strategy] = true
		out = append(out, t.Strategy)
	}
	return out
}

// WithEmotion returns a copy of j with the emotion replaced.
func WithEmotion(j models.DailyJournal, e models.Emotion) models.DailyJournal {
	out := Clone(j)
	out.Emotion = e
	return out
}

// WithDisciplineScore returns a copy of j with the score clamped to 1..10.
func WithDisciplineScore(j models.DailyJournal, score int) models.DailyJournal {
	out := Clone(j)
	out.DisciplineScore = ClampScore(score)
	return out
}

// WithNotes returns a copy of j with the notes replaced.
func WithNotes(j models.DailyJournal, notes string) models.DailyJournal {
	out := Clone(j)
	out.Notes = notes
	return out
}

// WithChecklist returns a copy of j with the checklist replaced.
func WithChecklist(j models.DailyJournal, c models.Checklist) models.DailyJournal {
	out := Clone(j)
	out.Checklist = c
	return out
}

// ClampScore bounds a discipline score to the valid range.
func ClampScore(score int) int {
	if score < MinDisciplineScore {
		return MinDisciplineScore
	}
	if score > MaxDisciplineScore {
		return MaxDisciplineScore
	}
	return score
}

// Clone copies j including its trade slice so that appends on the copy
// never alias the original backing array.
func Clone(j models.DailyJournal) models.DailyJournal {
	out := j
	out.Trades = make([]models.Trade, len(j.Trades))
	copy(out.Trades, j.Trades)
	return out
}
