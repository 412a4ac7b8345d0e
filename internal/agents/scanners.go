package agents

import (
	"strings"

	"trademind/internal/errors"
)

// Scanner is a named market scan preset. Display lists the rules shown on
// the card; Rules is what gets sent with the scan.
type Scanner struct {
	ID       string   `json:"id"`
	TitleKey string   `json:"titleKey"`
	Display  []string `json:"display"`
	Rules    []string `json:"rules"`
	Editable bool     `json:"editable"`
}

// DefaultFinvizRules seeds the user-editable scanner.
var DefaultFinvizRules = []string{
	"SMA Align (20 > 50 > 200)",
	"Avg Vol over 500K",
	"Cur Vol over 1M",
	"Perf Today Up",
}

// Scanners returns the built-in presets in card order.
func Scanners() []Scanner {
	return []Scanner{
		{
			ID:       "momentum",
			TitleKey: "scannerMomentum",
			Display: []string{
				"EMA 20 > SMA 50 > EMA 200",
				"RSI14 > 50 & RSI > RSI MA14",
				"Pullback to EMA 20",
				"Momentum Breakout Setup",
			},
			Rules: []string{
				"EMA 20 > SMA 50 > EMA 200",
				"RSI14 > 50 & RSI > RSI MA14",
				"Pullback to EMA 20 zone",
				"Break of short-term consolidation",
			},
		},
		{
			ID:       "pro",
			TitleKey: "scannerPro",
			Display: []string{
				"Institutional Trend (SMA 20>50>200)",
				"Price > SMA 200 (Stable)",
				"Unextended Entry (Max 3% SMA20)",
				"Volume Spike Detection",
			},
			Rules: []string{
				"Price > SMA200",
				"SMA20 > SMA50",
				"SMA50 > SMA200",
				"Price proximity to SMA20 (within 3%)",
				"Relative Volume > 2.0",
			},
		},
		{
			ID:       "open",
			TitleKey: "scannerOpen",
			Display:  []string{"Change % > 2%", "Volume > 1M", "Avg Vol > 500K", "ATR > 1", "Market = USA"},
			Rules:    []string{"US Opening Gap & Go logic", "High volatility stocks", "Volume > 1 million in first 30 mins"},
		},
		{
			ID:       "buy",
			TitleKey: "scannerBuy",
			Display:  []string{"Price > SMA200", "SMA20 > SMA50", "Pullback to SMA50", "Hammer or Bullish Pin Bar"},
			Rules:    []string{"Institutional pullback setup", "Rejection of SMA 50", "High timeframe trend alignment"},
		},
		{
			ID:       "sell",
			TitleKey: "scannerSell",
			Display:  []string{"Price < SMA200", "SMA20 < SMA50", "Pullback to EMA20", "Engulfing Red Candle"},
			Rules:    []string{"Bearish momentum exhaustion", "EMA 20 dynamic resistance", "Volume confirmation on drop"},
		},
		{
			ID:       "finviz",
			TitleKey: "scannerFinviz",
			Display:  append([]string(nil), DefaultFinvizRules...),
			Rules:    append([]string(nil), DefaultFinvizRules...),
			Editable: true,
		},
	}
}

// FindScanner looks a preset up by id.
func FindScanner(id string) (Scanner, error) {
	for _, s := range Scanners() {
		if strings.EqualFold(s.ID, id) {
			return s, nil
		}
	}
	return Scanner{}, errors.Wrapf(errors.ErrUnknownScanner, "scanner %q", id)
}

// WithRules returns s with custom rules when it is editable. Empty rules
// keep the preset.
func (s Scanner) WithRules(rules []string) Scanner {
	if !s.Editable || len(rules) == 0 {
		return s
	}
	s.Rules = append([]string(nil), rules...)
	s.Display = append([]string(nil), rules...)
	return s
}

// ParseRules splits an edited rule block into one rule per non-blank line.
func ParseRules(text string) []string {
	var rules []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rules = append(rules, line)
		}
	}
	return rules
}
