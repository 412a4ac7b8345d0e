package stats

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"trademind/internal/models"
)

// ProfitFactorFallback is reported when there are no losing trades.
const ProfitFactorFallback = 2.5

var multipliers = map[models.Timeframe]float64{
	models.Timeframe15m:     0.05,
	models.Timeframe1h:      0.15,
	models.Timeframe1M:      0.60,
	models.Timeframe1y:      0.90,
	models.TimeframeAllTime: 1.0,
}

// Multiplier returns the display scaling applied to the all-time figures for
// tf. Unknown timeframes scale by 1.
func Multiplier(tf models.Timeframe) float64 {
	if m, ok := multipliers[tf]; ok {
		return m
	}
	return 1.0
}

// Jitter supplies the random factor applied to the average gain.
type Jitter interface {
	Factor() float64
}

// NoJitter always returns 1, for deterministic output.
type NoJitter struct{}

// Factor implements Jitter.
func (NoJitter) Factor() float64 { return 1.0 }

// RandomJitter draws uniformly from [0.8, 1.2).
type RandomJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomJitter returns a RandomJitter over rng, or a time-seeded source when rng is nil.
func NewRandomJitter(rng *rand.Rand) *RandomJitter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomJitter{rng: rng}
}

// Factor implements Jitter.
func (r *RandomJitter) Factor() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return 0.8 + r.rng.Float64()*0.4
}

// Rollup is the four-card dashboard summary.
type Rollup struct {
	Timeframe    models.Timeframe `json:"timeframe"`
	TotalPnL     float64          `json:"totalPnl"`
	WinRate      float64          `json:"winRate"` // percent
	TradeCount   int              `json:"tradeCount"`
	AvgGain      float64          `json:"avgGain"`
	ProfitFactor float64          `json:"profitFactor"`
}

type tally struct {
	n       int
	wins    int
	total   float64
	winSum  float64
	lossSum float64
}

func count(trades []models.Trade) tally {
	var t tally
	for _, tr := range trades {
		t.n++
		t.total += tr.PnL
		if tr.IsWin() {
			t.wins++
			t.winSum += tr.PnL
		} else {
			// Breakeven trades land here too.
			t.lossSum += math.Abs(tr.PnL)
		}
	}
	return t
}

func (t tally) rollup(tf models.Timeframe, mult float64, jitter Jitter) Rollup {
	r := Rollup{
		Timeframe:    tf,
		TotalPnL:     t.total * mult,
		ProfitFactor: ProfitFactorFallback,
	}
	if t.n > 0 {
		r.WinRate = float64(t.wins) / float64(t.n) * 100
		r.TradeCount = int(math.Floor(float64(t.n) * mult))
		if r.TradeCount == 0 {
			r.TradeCount = 1
		}
	}
	if t.wins > 0 {
		if jitter == nil {
			jitter = NoJitter{}
		}
		r.AvgGain = t.winSum / float64(t.wins) * jitter.Factor()
	}
	if t.lossSum > 0 {
		r.ProfitFactor = t.winSum / t.lossSum
	}
	return r
}

// ScaledRollup summarizes every trade and scales the total and count by the
// timeframe multiplier. The win rate and profit factor are scale-free.
func ScaledRollup(tf models.Timeframe, trades []models.Trade, jitter Jitter) Rollup {
	return count(trades).rollup(tf, Multiplier(tf), jitter)
}

// Window returns how far back tf reaches from now; zero means unbounded.
func Window(tf models.Timeframe) time.Duration {
	switch tf {
	case models.Timeframe15m:
		return 15 * time.Minute
	case models.Timeframe1h:
		return time.Hour
	case models.Timeframe1M:
		return 30 * 24 * time.Hour
	case models.Timeframe1y:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

// RangeRollup summarizes only the trades whose timestamp falls inside the
// timeframe window ending at now. No scaling is applied. Trades with an
// unparseable timestamp are only counted for the all-time window.
func RangeRollup(tf models.Timeframe, trades []models.Trade, now time.Time, jitter Jitter) Rollup {
	window := Window(tf)
	if window == 0 {
		return count(trades).rollup(tf, 1.0, jitter)
	}

	from := now.Add(-window)
	var in []models.Trade
	for _, tr := range trades {
		ts, err := time.Parse(time.RFC3339, tr.Timestamp)
		if err != nil {
			continue
		}
		if !ts.Before(from) && !ts.After(now) {
			in = append(in, tr)
		}
	}
	return count(in).rollup(tf, 1.0, jitter)
}
