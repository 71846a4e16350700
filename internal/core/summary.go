package core

// Summary holds the totals shown above the history table and in exports.
type Summary struct {
	TotalIncome   Money
	TotalExpenses Money
	Balance       Money
}

// Summarize totals ts. Unlike Aggregate, only rows typed expenses count
// towards TotalExpenses.
func Summarize(ts []Transaction) Summary {
	var s Summary
	for _, t := range ts {
		switch t.Type {
		case TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case TypeExpenses:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}
