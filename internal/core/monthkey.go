package core

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// UnknownMonthKey labels transactions with neither a usable date nor a month.
const UnknownMonthKey = "Unknown"

var monthAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatMonthKey renders t as "Mon/YYYY".
func FormatMonthKey(t time.Time) string {
	return monthAbbrev[t.Month()-1] + "/" + strconv.Itoa(t.Year())
}

// MonthKey derives the canonical month label of t. A parseable Date wins,
// then a non-empty Month, then UnknownMonthKey.
func MonthKey(t Transaction) string {
	if d, ok := ParseDate(t.Date); ok {
		return FormatMonthKey(d)
	}
	if t.Month != "" {
		return t.Month
	}
	return UnknownMonthKey
}

// ParseMonthKey splits "Mon/YYYY" into a year and a zero-based month index.
// Anything else, including "Unknown", yields (0, -1).
func ParseMonthKey(key string) (year, month int) {
	parts := strings.Split(key, "/")
	if key == UnknownMonthKey || len(parts) != 2 {
		return 0, -1
	}
	month = -1
	for i, abbr := range monthAbbrev {
		if abbr == parts[0] {
			month = i
			break
		}
	}
	y, err := strconv.Atoi(parts[1])
	if month < 0 || err != nil || y < 0 || strings.HasPrefix(parts[1], "+") {
		return 0, -1
	}
	return y, month
}

// CompareMonthKeys orders keys by year, then month. Keys that parse to the
// same position fall back to plain string order so sorting stays total.
func CompareMonthKeys(a, b string) int {
	ay, am := ParseMonthKey(a)
	by, bm := ParseMonthKey(b)
	switch {
	case ay != by:
		return cmp.Compare(ay, by)
	case am != bm:
		return cmp.Compare(am, bm)
	default:
		return strings.Compare(a, b)
	}
}

