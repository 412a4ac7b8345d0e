// Package utils provides shared utility functions.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as dollars with thousands separators and
// two decimals, rounding half away from zero.
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}

	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	out := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		return "-" + out
	}
	return out
}

// FormatPnL formats a P&L amount with an explicit sign for gains.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if decimal.NewFromFloat(pnl).Round(2).IsPositive() {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a ratio already expressed in percent.
func FormatPercent(value float64) string {
	return decimal.NewFromFloat(value).Round(1).StringFixed(1) + "%"
}

// FormatRatio formats a dimensionless ratio such as a profit factor.
func FormatRatio(value float64) string {
	return decimal.NewFromFloat(value).Round(2).StringFixed(2)
}

// FormatCompact shortens large amounts for calendar cells, e.g. 1250 -> "1.3k".
func FormatCompact(amount float64) string {
	d := decimal.NewFromFloat(amount)
	abs := d.Abs()
	thousand := decimal.NewFromInt(1000)
	million := decimal.NewFromInt(1000000)

	switch {
	case abs.GreaterThanOrEqual(million):
		return d.Div(million).Round(1).String() + "M"
	case abs.GreaterThanOrEqual(thousand):
		return d.Div(thousand).Round(1).String() + "k"
	default:
		return d.Round(0).String()
	}
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
