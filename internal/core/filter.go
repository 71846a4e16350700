package core

import (
	"slices"
	"strings"
)

// AllOption is the select-box value that disables the month and type axes.
const AllOption = "all"

// Criteria describes the active history filters. Empty fields impose no
// constraint; active fields are combined with AND.
type Criteria struct {
	SearchText string
	MonthKey   string
	Type       string
	Category   string
}

func (c Criteria) IsZero() bool {
	return c.SearchText == "" && !axisActive(c.MonthKey) && !axisActive(c.Type) && c.Category == ""
}

// Match reports whether t satisfies every active criterion.
func (c Criteria) Match(t Transaction) bool {
	key := MonthKey(t)
	if c.SearchText != "" {
		needle := strings.ToLower(c.SearchText)
		hit := false
		for _, field := range []string{key, t.Category, string(t.Type), t.Amount.String()} {
			if strings.Contains(strings.ToLower(field), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if axisActive(c.MonthKey) && key != c.MonthKey {
		return false
	}
	if axisActive(c.Type) && string(t.Type) != c.Type {
		return false
	}
	if c.Category != "" && !strings.Contains(strings.ToLower(t.Category), strings.ToLower(c.Category)) {
		return false
	}
	return true
}

func axisActive(v string) bool {
	return v != "" && v != AllOption
}

// Filter returns the transactions of ts that match c, in input order.
// Elements are returned as-is, never modified.
func Filter(ts []Transaction, c Criteria) []Transaction {
	if c.IsZero() {
		return slices.Clone(ts)
	}
	out := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// AvailableMonthKeys collects the distinct month keys present in ts.
func AvailableMonthKeys(ts []Transaction) map[string]struct{} {
	set := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		set[MonthKey(t)] = struct{}{}
	}
	return set
}

// SortedMonthKeys returns the members of set in chronological order.
func SortedMonthKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareMonthKeys)
	return keys
}

// Normalized returns copies of ts whose Month holds the canonical month key,
// for handing to display and export formatters.
func Normalized(ts []Transaction) []Transaction {
	out := make([]Transaction, len(ts))
	for i, t := range ts {
		t.Month = MonthKey(t)
		out[i] = t
	}
	return out
}
