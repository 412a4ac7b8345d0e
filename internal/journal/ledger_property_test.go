package journal

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"trademind/internal/models"
)

// Property 1: the day total always equals the sum of the trades still present,
// whatever sequence of adds and removes produced the entry.
func TestProperty_DayTotalTracksPresentTrades(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("DayTotal equals the sum over the surviving trades", prop.ForAll(
		func(pnls []int, removals []int) bool {
			j := NewDailyJournal("2025-02-03")
			present := make(map[string]float64)

			for i, p := range pnls {
				id := fmt.Sprintf("t%d", i)
				pnl := float64(p) / 100
				j = AddTrade(j, models.Trade{ID: id, Asset: "XAUUSD", Direction: models.DirectionBuy, Lots: 1, PnL: pnl})
				present[id] = pnl
			}
			for _, r := range removals {
				id := fmt.Sprintf("t%d", r)
				j = RemoveTrade(j, id)
				delete(present, id)
			}

			want := 0.0
			for _, v := range present {
				want += v
			}
			if len(j.Trades) != len(present) {
				t.Logf("trade count %d, expected %d", len(j.Trades), len(present))
				return false
			}
			return math.Abs(DayTotal(j)-want) < 1e-6
		},
		gen.SliceOf(gen.IntRange(-500000, 500000)),
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.Property("RemoveTrade with an unknown id leaves the entry equal", prop.ForAll(
		func(pnls []int) bool {
			j := NewDailyJournal("2025-02-04")
			for i, p := range pnls {
				j = AddTrade(j, models.Trade{ID: fmt.Sprintf("t%d", i), PnL: float64(p)})
			}
			after := RemoveTrade(j, "missing")
			return reflect.DeepEqual(j, after) && DayTotal(j) == DayTotal(after)
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
	))

	properties.TestingRun(t)
}

func TestNewDailyJournal_Defaults(t *testing.T) {
	j := NewDailyJournal("2025-03-01")

	if j.Date != "2025-03-01" {
		t.Errorf("Date = %q", j.Date)
	}
	if len(j.Trades) != 0 || j.Trades == nil {
		t.Errorf("Trades = %#v, want empty non-nil slice", j.Trades)
	}
	if j.Emotion != models.EmotionCalm {
		t.Errorf("Emotion = %q, want Calm", j.Emotion)
	}
	if j.DisciplineScore != 10 {
		t.Errorf("DisciplineScore = %d, want 10", j.DisciplineScore)
	}
	if j.Checklist.Passed() != 4 {
		t.Errorf("Checklist = %+v, want all flags set", j.Checklist)
	}
	if DayTotal(j) != 0 {
		t.Errorf("DayTotal = %v, want 0", DayTotal(j))
	}
}

func TestAddTrade_DoesNotMutateInput(t *testing.T) {
	base := NewDailyJournal("2025-03-02")
	base = AddTrade(base, models.Trade{ID: "a", PnL: 10})

	// Leave spare capacity so an aliasing append would be visible.
	base.Trades = append(make([]models.Trade, 0, 8), base.Trades...)

	first := AddTrade(base, models.Trade{ID: "b", PnL: 20})
	second := AddTrade(base, models.Trade{ID: "c", PnL: 30})

	if len(base.Trades) != 1 {
		t.Fatalf("input mutated: %d trades", len(base.Trades))
	}
	if first.Trades[1].ID != "b" || second.Trades[1].ID != "c" {
		t.Errorf("copies alias each other: %q, %q", first.Trades[1].ID, second.Trades[1].ID)
	}
}

func TestRemoveTrade_KeepsOrder(t *testing.T) {
	j := NewDailyJournal("2025-03-03")
	for _, id := range []string{"a", "b", "c", "d"} {
		j = AddTrade(j, models.Trade{ID: id})
	}
	j = RemoveTrade(j, "b")

	var ids []string
	for _, tr := range j.Trades {
		ids = append(ids, tr.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "c", "d"}) {
		t.Errorf("ids = %v", ids)
	}
}

func TestWithDisciplineScore_Clamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{7, 7},
		{10, 10},
		{42, 10},
	}
	for _, tt := range tests {
		got := WithDisciplineScore(NewDailyJournal("2025-03-04"), tt.in).DisciplineScore
		if got != tt.want {
			t.Errorf("WithDisciplineScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStrategies_FirstSeenOrder(t *testing.T) {
	j := NewDailyJournal("2025-03-05")
	for _, s := range []string{"ORB", "Scalp", "ORB", "", "Scalp"} {
		j = AddTrade(j, models.Trade{Strategy: s})
	}
	got := Strategies(j)
	want := []string{"ORB", "Scalp", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strategies = %q, want %q", got, want)
	}
}

func TestSeed_Totals(t *testing.T) {
	seed := Seed()
	if len(seed) != 2 {
		t.Fatalf("seed has %d days", len(seed))
	}
	if got := DayTotal(seed["2025-01-15"]); got != 1250 {
		t.Errorf("2025-01-15 total = %v, want 1250", got)
	}
	if got := DayTotal(seed["2025-01-16"]); got != -1000 {
		t.Errorf("2025-01-16 total = %v, want -1000", got)
	}
}
