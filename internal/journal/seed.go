package journal

import "trademind/internal/models"

// Seed returns the sample journal used on first run or when persisted state
// cannot be read.
func Seed() models.Journals {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	eurusd := models.Trade{
		ID:              "1",
		Asset:           "EURUSD",
		Direction:       models.DirectionBuy,
		EntryPrice:      f(1.0850),
		ExitPrice:       f(1.0900),
		Lots:            1.5,
		PnL:             750,
		Strategy:        "Breakout",
		Timestamp:       "2025-01-15T10:30:00Z",
		DurationMinutes: n(45),
	}
	btcusd := models.Trade{
		ID:              "2",
		Asset:           "BTCUSD",
		Direction:       models.DirectionSell,
		EntryPrice:      f(95000),
		ExitPrice:       f(94000),
		Lots:            0.5,
		PnL:             500,
		Strategy:        "Trend Following",
		Timestamp:       "2025-01-15T14:20:00Z",
		DurationMinutes: n(120),
	}
	gold := models.Trade{
		ID:              "3",
		Asset:           "GOLD",
		Direction:       models.DirectionBuy,
		EntryPrice:      f(2650),
		ExitPrice:       f(2640),
		Lots:            1.0,
		PnL:             -1000,
		Strategy:        "Scalp",
		Timestamp:       "2025-01-16T09:00:00Z",
		DurationMinutes: n(5),
	}

	return models.Journals{
		"2025-01-15": {
			Date:            "2025-01-15",
			Trades:          []models.Trade{eurusd, btcusd},
			Emotion:         models.EmotionCalm,
			Notes:           "Great day overall. Followed the plan perfectly.",
			DisciplineScore: 9,
			Checklist:       models.Checklist{FollowedPlan: true, ControlledRisk: true, NoRevengeTrade: true, ProperSetup: true},
		},
		"2025-01-16": {
			Date:            "2025-01-16",
			Trades:          []models.Trade{gold},
			Emotion:         models.EmotionFrustrated,
			Notes:           "Took a bad scalp early on. Need to stick to higher timeframes.",
			DisciplineScore: 4,
			Checklist:       models.Checklist{FollowedPlan: false, ControlledRisk: true, NoRevengeTrade: false, ProperSetup: false},
		},
	}
}
