package stats

import (
	"sort"

	"trademind/internal/models"
)

// UnassignedStrategy labels trades recorded without a strategy.
const UnassignedStrategy = "Unassigned"

// GroupBy selects the breakdown dimension.
type GroupBy string

const (
	ByStrategy GroupBy = "strategy"
	ByAsset    GroupBy = "asset"
)

// Group is one row of a breakdown table.
type Group struct {
	Key     string  `json:"key"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	PnL     float64 `json:"pnl"`
	WinRate float64 `json:"winRate"`
}

// Breakdown groups trades by strategy or asset, largest P&L first.
func Breakdown(trades []models.Trade, by GroupBy) []Group {
	index := make(map[string]*Group)
	var order []string

	for _, t := range trades {
		key := t.Asset
		if by == ByStrategy {
			key = t.Strategy
			if key == "" {
				key = UnassignedStrategy
			}
		}
		g, ok := index[key]
		if !ok {
			g = &Group{Key: key}
			index[key] = g
			order = append(order, key)
		}
		g.Trades++
		g.PnL += t.PnL
		if t.IsWin() {
			g.Wins++
		}
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		g := *index[key]
		g.WinRate = float64(g.Wins) / float64(g.Trades) * 100
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PnL > out[j].PnL })
	return out
}

// Summary is the unscaled performance report for a set of trades.
type Summary struct {
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	NetPnL       float64 `json:"netPnl"`
	GrossProfit  float64 `json:"grossProfit"`
	GrossLoss    float64 `json:"grossLoss"`
	WinRate      float64 `json:"winRate"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"`
	LargestWin   float64 `json:"largestWin"`
	LargestLoss  float64 `json:"largestLoss"`
	ProfitFactor float64 `json:"profitFactor"`
	Expectancy   float64 `json:"expectancy"`
	BestDay      string  `json:"bestDay,omitempty"`
	WorstDay     string  `json:"worstDay,omitempty"`
	MostActive   string  `json:"mostActiveDay,omitempty"`
}

// Summarize computes the performance report over journals. Losses are every
// trade that is not a win, matching the rollup.
func Summarize(journals []models.DailyJournal) Summary {
	var s Summary
	bestPnL, worstPnL, mostTrades := 0.0, 0.0, 0

	for _, j := range SortChronological(journals) {
		day := 0.0
		for _, t := range j.Trades {
			s.Trades++
			s.NetPnL += t.PnL
			day += t.PnL
			if t.IsWin() {
				s.Wins++
				s.GrossProfit += t.PnL
				if t.PnL > s.LargestWin {
					s.LargestWin = t.PnL
				}
			} else {
				s.Losses++
				s.GrossLoss += -t.PnL
				if t.PnL < s.LargestLoss {
					s.LargestLoss = t.PnL
				}
			}
		}
		if len(j.Trades) == 0 {
			continue
		}
		if s.BestDay == "" || day > bestPnL {
			s.BestDay, bestPnL = j.Date, day
		}
		if s.WorstDay == "" || day < worstPnL {
			s.WorstDay, worstPnL = j.Date, day
		}
		if len(j.Trades) > mostTrades {
			s.MostActive, mostTrades = j.Date, len(j.Trades)
		}
	}

	s.ProfitFactor = ProfitFactorFallback
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
		s.Expectancy = s.NetPnL / float64(s.Trades)
	}
	if s.Wins > 0 {
		s.AvgWin = s.GrossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = -s.GrossLoss / float64(s.Losses)
	}
	return s
}
