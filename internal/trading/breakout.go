// Package trading holds the opening-range breakout desk: given the range
// high and low of the opening candle and the current price, it derives the
// bias, stop, target and the position size that fits a risk budget.
package trading

import (
	"math"
	"sort"
	"strings"

	"trademind/internal/errors"
)

// Bias is the breakout direction.
type Bias string

const (
	BiasLong    Bias = "LONG"
	BiasShort   Bias = "SHORT"
	BiasNoTrade Bias = "NO TRADE"
)

// RewardMultiple is the target distance expressed in stop distances.
const RewardMultiple = 2.0

// Default risk budget.
const (
	DefaultCapital     = 50000.0
	DefaultRiskPercent = 0.5
)

// Range is the opening range of an instrument and its contract terms.
type Range struct {
	Asset      string  `json:"asset"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Current    float64 `json:"current"`
	StopOffset float64 `json:"sl"`
	Multiplier float64 `json:"multiplier"` // value of one point per lot
	Unit       string  `json:"unit"`
}

// Validate rejects ranges that cannot produce a plan.
func (r Range) Validate() error {
	if r.High < r.Low {
		return errors.NewValidationError("high", r.High, "range high is below range low")
	}
	if r.Multiplier <= 0 {
		return errors.NewValidationError("multiplier", r.Multiplier, "must be positive")
	}
	if r.StopOffset < 0 {
		return errors.NewValidationError("sl", r.StopOffset, "cannot be negative")
	}
	return nil
}

var presets = map[string]Range{
	"XAU": {Asset: "XAU", High: 2650.50, Low: 2642.20, Current: 2652.10, StopOffset: 5, Multiplier: 10, Unit: "USD/OZ"},
	"NQ":  {Asset: "NQ", High: 18450.00, Low: 18380.00, Current: 18465.50, StopOffset: 25, Multiplier: 5, Unit: "PTS"},
}

// Preset returns the starting range for a supported asset.
func Preset(asset string) (Range, bool) {
	r, ok := presets[strings.ToUpper(asset)]
	return r, ok
}

// PresetAssets lists the assets with a preset, sorted.
func PresetAssets() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Plan is the evaluated breakout setup.
type Plan struct {
	Range       Range   `json:"range"`
	Bias        Bias    `json:"bias"`
	StopLoss    float64 `json:"stopLoss"`
	TakeProfit  float64 `json:"takeProfit"`
	Capital     float64 `json:"capital"`
	RiskPercent float64 `json:"riskPercent"`
	RiskAmount  float64 `json:"riskAmount"`
	RiskPerUnit float64 `json:"riskPerUnit"`
	MaxLots     float64 `json:"maxLots"`
}

// Evaluate computes the plan for r with the given risk budget. Without a
// breakout the stop, target and size are all zero.
func Evaluate(r Range, capital, riskPercent float64) (Plan, error) {
	if err := r.Validate(); err != nil {
		return Plan{}, err
	}
	if capital < 0 {
		return Plan{}, errors.NewValidationError("capital", capital, "cannot be negative")
	}
	if riskPercent < 0 || riskPercent > 100 {
		return Plan{}, errors.NewValidationError("riskPercent", riskPercent, "must be between 0 and 100")
	}

	p := Plan{
		Range:       r,
		Bias:        BiasNoTrade,
		Capital:     capital,
		RiskPercent: riskPercent,
		RiskAmount:  capital * riskPercent / 100,
	}

	switch {
	case r.Current > r.High:
		p.Bias = BiasLong
		p.StopLoss = r.High - r.StopOffset
		p.TakeProfit = r.Current + (r.Current-p.StopLoss)*RewardMultiple
	case r.Current < r.Low:
		p.Bias = BiasShort
		p.StopLoss = r.Low + r.StopOffset
		p.TakeProfit = r.Current - (p.StopLoss-r.Current)*RewardMultiple
	default:
		return p, nil
	}

	p.RiskPerUnit = math.Abs(r.Current - p.StopLoss)
	if p.RiskPerUnit > 0 {
		p.MaxLots = p.RiskAmount / (p.RiskPerUnit * r.Multiplier)
	}
	return p, nil
}
