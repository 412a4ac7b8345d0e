package stats

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"trademind/internal/journal"
	"trademind/internal/models"
)

func seedJournals() []models.DailyJournal {
	var out []models.DailyJournal
	for _, j := range journal.Seed() {
		out = append(out, j)
	}
	return out
}

func day(date string, pnls ...float64) models.DailyJournal {
	j := journal.NewDailyJournal(date)
	for i, p := range pnls {
		j = journal.AddTrade(j, models.Trade{
			ID:        date + string(rune('a'+i)),
			Direction: models.DirectionBuy,
			PnL:       p,
			Timestamp: date + "T10:0" + string(rune('0'+i)) + ":00Z",
		})
	}
	return j
}

func TestSortChronological(t *testing.T) {
	in := []models.DailyJournal{day("2025-01-20"), day("2025-01-05"), day("2025-01-12")}
	got := SortChronological(in)

	var dates []string
	for _, j := range got {
		dates = append(dates, j.Date)
	}
	want := []string{"2025-01-05", "2025-01-12", "2025-01-20"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("dates = %v, want %v", dates, want)
	}
	if in[0].Date != "2025-01-20" {
		t.Error("input reordered")
	}
}

func TestEquityCurveAndFeed_SeedData(t *testing.T) {
	journals := seedJournals()
	curve := EquityCurve(SortChronological(journals), DefaultBaseline)

	if len(curve) != 2 {
		t.Fatalf("curve has %d points", len(curve))
	}
	if curve[0].Balance != 48250 || curve[0].Label != "01/15" {
		t.Errorf("first point = %+v, want 48250 on 01/15", curve[0])
	}
	if curve[1].Balance != 47250 || curve[1].Label != "01/16" {
		t.Errorf("second point = %+v, want 47250 on 01/16", curve[1])
	}

	feed := TradeFeed(journals, DefaultFeedLimit)
	var ids []string
	for _, item := range feed {
		ids = append(ids, item.Trade.ID)
	}
	if !reflect.DeepEqual(ids, []string{"3", "2", "1"}) {
		t.Errorf("feed order = %v, want [3 2 1]", ids)
	}
	if feed[0].Date != "2025-01-16" {
		t.Errorf("feed[0].Date = %s", feed[0].Date)
	}
}

func TestTradeFeed_Limit(t *testing.T) {
	var journals []models.DailyJournal
	for d := 1; d <= 5; d++ {
		date := time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		journals = append(journals, day(date, 1, 2, 3))
	}
	if got := len(TradeFeed(journals, 10)); got != 10 {
		t.Errorf("len = %d, want 10", got)
	}
	if got := len(TradeFeed(journals, 0)); got != 15 {
		t.Errorf("unlimited len = %d, want 15", got)
	}
}

func TestDrawdown(t *testing.T) {
	curve := EquityCurve([]models.DailyJournal{
		day("2025-03-01", 1000),
		day("2025-03-02", -1500),
		day("2025-03-03", 200),
		day("2025-03-04", 2000),
	}, 10000)
	dd := Drawdown(curve, 10000)

	want := []float64{0, -1500, -1300, 0}
	for i, p := range dd {
		if p.Drawdown != want[i] {
			t.Errorf("dd[%d] = %v, want %v", i, p.Drawdown, want[i])
		}
	}
	worst := MaxDrawdown(dd)
	if worst.Date != "2025-03-02" {
		t.Errorf("max drawdown on %s", worst.Date)
	}
	if math.Abs(worst.Percent-(-1500.0/11000*100)) > 1e-9 {
		t.Errorf("percent = %v", worst.Percent)
	}
}

func TestScaledRollup_Multipliers(t *testing.T) {
	trades := AllTrades(seedJournals())

	tests := []struct {
		tf        models.Timeframe
		wantPnL   float64
		wantCount int
	}{
		{models.Timeframe15m, 12.5, 1},
		{models.Timeframe1h, 37.5, 1},
		{models.Timeframe1M, 150, 1},
		{models.Timeframe1y, 225, 2},
		{models.TimeframeAllTime, 250, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			r := ScaledRollup(tt.tf, trades, NoJitter{})
			if math.Abs(r.TotalPnL-tt.wantPnL) > 1e-9 {
				t.Errorf("TotalPnL = %v, want %v", r.TotalPnL, tt.wantPnL)
			}
			if r.TradeCount != tt.wantCount {
				t.Errorf("TradeCount = %d, want %d", r.TradeCount, tt.wantCount)
			}
			if math.Abs(r.WinRate-200.0/3) > 1e-9 {
				t.Errorf("WinRate = %v", r.WinRate)
			}
			if r.ProfitFactor != 1.25 {
				t.Errorf("ProfitFactor = %v, want 1.25", r.ProfitFactor)
			}
			if r.AvgGain != 625 {
				t.Errorf("AvgGain = %v, want 625", r.AvgGain)
			}
		})
	}
}

func TestRandomJitter_Bounds(t *testing.T) {
	j := NewRandomJitter(rand.New(rand.NewSource(7)))
	for i := 0; i < 1000; i++ {
		f := j.Factor()
		if f < 0.8 || f >= 1.2 {
			t.Fatalf("factor %v out of [0.8, 1.2)", f)
		}
	}

	trades := []models.Trade{{PnL: 100}}
	r := ScaledRollup(models.TimeframeAllTime, trades, NewRandomJitter(nil))
	if r.AvgGain < 80 || r.AvgGain >= 120 {
		t.Errorf("AvgGain = %v outside jitter band", r.AvgGain)
	}
}

func TestScaledRollup_BreakevenCountsAsLoss(t *testing.T) {
	r := ScaledRollup(models.TimeframeAllTime, []models.Trade{{PnL: 100}, {PnL: 0}}, NoJitter{})
	if r.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", r.WinRate)
	}
	// A zero loss sum still falls back.
	if r.ProfitFactor != ProfitFactorFallback {
		t.Errorf("ProfitFactor = %v", r.ProfitFactor)
	}
}

func TestRangeRollup(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{PnL: 100, Timestamp: "2025-06-30T11:50:00Z"}, // 10 minutes ago
		{PnL: -40, Timestamp: "2025-06-30T11:20:00Z"}, // 40 minutes ago
		{PnL: 300, Timestamp: "2025-06-10T09:00:00Z"}, // 20 days ago
		{PnL: -80, Timestamp: "2024-09-01T09:00:00Z"}, // 10 months ago
		{PnL: 500, Timestamp: "2022-01-01T09:00:00Z"}, // years ago
		{PnL: 7, Timestamp: "not a time"},
	}

	tests := []struct {
		tf    models.Timeframe
		pnl   float64
		count int
	}{
		{models.Timeframe15m, 100, 1},
		{models.Timeframe1h, 60, 2},
		{models.Timeframe1M, 360, 3},
		{models.Timeframe1y, 280, 4},
		{models.TimeframeAllTime, 787, 6},
	}
	for _, tt := range tests {
		r := RangeRollup(tt.tf, trades, now, NoJitter{})
		if r.TotalPnL != tt.pnl || r.TradeCount != tt.count {
			t.Errorf("%s: pnl=%v count=%d, want %v/%d", tt.tf, r.TotalPnL, r.TradeCount, tt.pnl, tt.count)
		}
	}
}

func TestCalendar_Classes(t *testing.T) {
	journals := append(seedJournals(), day("2025-01-20"))
	cal := Calendar(journals, 2025, time.January)

	if cal.Offset != 3 {
		t.Errorf("Offset = %d, want 3 (January 1st 2025 is a Wednesday)", cal.Offset)
	}
	if len(cal.Cells) != 31 {
		t.Fatalf("cells = %d", len(cal.Cells))
	}

	tests := []struct {
		day   int
		class DayClass
		pnl   float64
		count int
		entry bool
	}{
		{15, DayPositive, 1250, 2, true},
		{16, DayNegative, -1000, 1, true},
		{17, DayBlank, 0, 0, false},
		{20, DayFlat, 0, 0, true},
	}
	for _, tt := range tests {
		c := cal.Cells[tt.day-1]
		if c.Class != tt.class || c.PnL != tt.pnl || c.TradeCount != tt.count || c.HasEntry != tt.entry {
			t.Errorf("day %d = %+v", tt.day, c)
		}
	}
	if cal.MonthTotal() != 250 {
		t.Errorf("MonthTotal = %v", cal.MonthTotal())
	}

	weeks := cal.Weeks()
	if len(weeks) != 5 || weeks[0][2] != nil || weeks[0][3].Day != 1 {
		t.Errorf("unexpected week layout: %d rows", len(weeks))
	}
	for _, w := range weeks {
		if len(w) != 7 {
			t.Errorf("week of %d slots", len(w))
		}
	}
}

func TestCalendar_LeapFebruary(t *testing.T) {
	if got := len(Calendar(nil, 2024, time.February).Cells); got != 29 {
		t.Errorf("February 2024 has %d cells", got)
	}
}

func TestJournalList_WinBadge(t *testing.T) {
	rows := JournalList([]models.DailyJournal{
		day("2025-01-01", -5),
		day("2025-01-03"),
		day("2025-01-02", 5, -5),
	})

	want := []struct {
		date string
		win  bool
	}{
		{"2025-01-03", true},
		{"2025-01-02", true},
		{"2025-01-01", false},
	}
	for i, w := range want {
		if rows[i].Date != w.date || rows[i].Win != w.win {
			t.Errorf("row %d = %+v, want %s win=%v", i, rows[i], w.date, w.win)
		}
	}
}

func TestBreakdown_ByStrategy(t *testing.T) {
	trades := []models.Trade{
		{Strategy: "ORB", PnL: 100},
		{Strategy: "", PnL: -50},
		{Strategy: "ORB", PnL: -20},
		{Strategy: "Fade", PnL: 300},
	}
	groups := Breakdown(trades, ByStrategy)

	if len(groups) != 3 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Key != "Fade" || groups[1].Key != "ORB" || groups[2].Key != UnassignedStrategy {
		t.Errorf("order = %s, %s, %s", groups[0].Key, groups[1].Key, groups[2].Key)
	}
	if groups[1].Trades != 2 || groups[1].WinRate != 50 || groups[1].PnL != 80 {
		t.Errorf("ORB = %+v", groups[1])
	}
}

func TestSummarize_SeedData(t *testing.T) {
	s := Summarize(seedJournals())

	if s.Trades != 3 || s.Wins != 2 || s.Losses != 1 {
		t.Errorf("counts = %d/%d/%d", s.Trades, s.Wins, s.Losses)
	}
	if s.NetPnL != 250 || s.GrossProfit != 1250 || s.GrossLoss != 1000 {
		t.Errorf("pnl = %+v", s)
	}
	if s.AvgWin != 625 || s.AvgLoss != -1000 || s.LargestWin != 750 || s.LargestLoss != -1000 {
		t.Errorf("averages = %+v", s)
	}
	if s.BestDay != "2025-01-15" || s.WorstDay != "2025-01-16" || s.MostActive != "2025-01-15" {
		t.Errorf("days = %s %s %s", s.BestDay, s.WorstDay, s.MostActive)
	}
}

func TestTradeFeed_SubSecondOrder(t *testing.T) {
	j := journal.NewDailyJournal("2025-02-01")
	j.Trades = []models.Trade{
		{ID: "older", Timestamp: "2025-02-01T10:00:00Z"},
		{ID: "mid", Timestamp: "2025-02-01T10:00:00.100Z"},
		{ID: "newer", Timestamp: "2025-02-01T10:00:00.600Z"},
	}

	feed := TradeFeed([]models.DailyJournal{j}, 0)
	var ids []string
	for _, it := range feed {
		ids = append(ids, it.Trade.ID)
	}
	want := []string{"newer", "mid", "older"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("feed order = %v, want %v", ids, want)
		}
	}
}
