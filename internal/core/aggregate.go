package core

import "slices"

// MonthSummary holds the accumulated totals for one month key.
type MonthSummary struct {
	MonthKey string
	Income   Money
	Expenses Money
}

// Aggregate folds ts into one MonthSummary per month key, sorted with
// CompareMonthKeys. Any type other than income is counted as an expense.
func Aggregate(ts []Transaction) []MonthSummary {
	byKey := make(map[string]*MonthSummary)
	for _, t := range ts {
		key := MonthKey(t)
		s, ok := byKey[key]
		if !ok {
			s = &MonthSummary{MonthKey: key}
			byKey[key] = s
		}
		if t.Type == TypeIncome {
			s.Income = s.Income.Add(t.Amount)
		} else {
			s.Expenses = s.Expenses.Add(t.Amount)
		}
	}

	out := make([]MonthSummary, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b MonthSummary) int {
		return CompareMonthKeys(a.MonthKey, b.MonthKey)
	})
	return out
}
