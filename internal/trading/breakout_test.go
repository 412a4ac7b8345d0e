package trading

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEvaluate_Presets(t *testing.T) {
	tests := []struct {
		asset   string
		bias    Bias
		stop    float64
		target  float64
		risk    float64
		maxLots float64
		perUnit float64
	}{
		// 2652.10 > 2650.50: long, stop 2645.50, risk/unit 6.60
		{"XAU", BiasLong, 2645.50, 2652.10 + 6.60*2, 250, 250 / (6.60 * 10), 6.60},
		// 18465.50 > 18450: long, stop 18425, risk/unit 40.50
		{"NQ", BiasLong, 18425, 18465.50 + 40.50*2, 250, 250 / (40.50 * 5), 40.50},
	}
	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			r, ok := Preset(tt.asset)
			if !ok {
				t.Fatalf("no preset for %s", tt.asset)
			}
			p, err := Evaluate(r, DefaultCapital, DefaultRiskPercent)
			if err != nil {
				t.Fatal(err)
			}
			if p.Bias != tt.bias {
				t.Errorf("Bias = %s", p.Bias)
			}
			if !approx(p.StopLoss, tt.stop) || !approx(p.TakeProfit, tt.target) {
				t.Errorf("stop/target = %v/%v, want %v/%v", p.StopLoss, p.TakeProfit, tt.stop, tt.target)
			}
			if !approx(p.RiskAmount, tt.risk) || !approx(p.RiskPerUnit, tt.perUnit) {
				t.Errorf("risk = %v per unit %v", p.RiskAmount, p.RiskPerUnit)
			}
			if !approx(p.MaxLots, tt.maxLots) {
				t.Errorf("MaxLots = %v, want %v", p.MaxLots, tt.maxLots)
			}
		})
	}
}

func TestEvaluate_ShortAndInside(t *testing.T) {
	r := Range{High: 100, Low: 90, Current: 85, StopOffset: 2, Multiplier: 1}
	p, err := Evaluate(r, 10000, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bias != BiasShort || p.StopLoss != 92 || p.TakeProfit != 71 || p.MaxLots != 100.0/7 {
		t.Errorf("short plan = %+v", p)
	}

	r.Current = 95
	p, _ = Evaluate(r, 10000, 1)
	if p.Bias != BiasNoTrade || p.StopLoss != 0 || p.TakeProfit != 0 || p.MaxLots != 0 {
		t.Errorf("inside plan = %+v", p)
	}
	if p.RiskAmount != 100 {
		t.Errorf("RiskAmount = %v", p.RiskAmount)
	}
}

func TestEvaluate_StopOffsetEdges(t *testing.T) {
	// Stop offset pulls the stop onto the current price.
	r := Range{High: 100, Low: 90, Current: 101, StopOffset: -1, Multiplier: 1}
	if _, err := Evaluate(r, 1000, 1); err == nil {
		t.Fatal("negative stop offset accepted")
	}
	r = Range{High: 101, Low: 90, Current: 101.0000001, StopOffset: 0, Multiplier: 1}
	p, err := Evaluate(r, 1000, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bias != BiasLong || math.IsInf(p.MaxLots, 0) {
		t.Errorf("plan = %+v", p)
	}
}

func TestEvaluate_Validation(t *testing.T) {
	bad := []struct {
		r       Range
		capital float64
		riskPct float64
	}{
		{Range{High: 1, Low: 2, Multiplier: 1}, 1, 1},
		{Range{High: 2, Low: 1, Multiplier: 0}, 1, 1},
		{Range{High: 2, Low: 1, Multiplier: 1}, -1, 1},
		{Range{High: 2, Low: 1, Multiplier: 1}, 1, 101},
	}
	for i, b := range bad {
		if _, err := Evaluate(b.r, b.capital, b.riskPct); err == nil {
			t.Errorf("case %d accepted", i)
		}
	}
	if _, ok := Preset("btc"); ok {
		t.Error("unexpected preset")
	}
	if got := PresetAssets(); len(got) != 2 || got[0] != "NQ" {
		t.Errorf("PresetAssets = %v", got)
	}
}
