package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"trademind/internal/models"
)

// FormatTimestamp renders an RFC 3339 trade timestamp as "Jan 15 10:30".
// Unparseable input is returned unchanged.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("Jan 02 15:04")
}

// FormatDate renders a journal date as "Wed, Jan 15 2025".
func FormatDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon, Jan 02 2006")
}

// FormatPrice formats an optional price; small prices such as FX quotes keep
// four decimals.
func FormatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	if *price < 10 {
		return fmt.Sprintf("%.4f", *price)
	}
	return fmt.Sprintf("%.2f", *price)
}

// FormatLots formats a lot size without trailing zeros.
func FormatLots(lots float64) string {
	return strconv.FormatFloat(lots, 'f', -1, 64)
}

// FormatMinutes formats an optional holding duration.
func FormatMinutes(minutes *int) string {
	if minutes == nil {
		return "-"
	}
	return FormatDuration(time.Duration(*minutes) * time.Minute)
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatScore renders a discipline score as "7/10".
func FormatScore(score int) string {
	return fmt.Sprintf("%d/10", score)
}

// TruncateString truncates a string to max runes with ellipsis.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// PadRight pads a string to the right.
func PadRight(s string, length int) string {
	n := visibleLen(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// PadLeft pads a string to the left.
func PadLeft(s string, length int) string {
	n := visibleLen(s)
	if n >= length {
		return s
	}
	return strings.Repeat(" ", length-n) + s
}

// Center centers a string.
func Center(s string, length int) string {
	n := visibleLen(s)
	if n >= length {
		return s
	}
	padding := length - n
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
