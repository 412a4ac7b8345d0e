package utils

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// ValidDate reports whether s is a canonical YYYY-MM-DD date.
func ValidDate(s string) bool {
	t, err := time.Parse(dateLayout, s)
	return err == nil && t.Format(dateLayout) == s
}

// ParseMonth parses a YYYY-MM month selector.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q: expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// ShortLabel turns 2025-01-15 into 01/15 for chart axes.
func ShortLabel(date string) string {
	if len(date) == len(dateLayout) {
		return date[5:7] + "/" + date[8:10]
	}
	return date
}
