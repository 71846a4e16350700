package core

import (
	"slices"
	"testing"
)

func sample() []Transaction {
	return []Transaction{
		{ID: 1, Amount: Money{15000}, Type: TypeIncome, Date: "2024-01-15", Category: "Salary"},
		{ID: 2, Amount: Money{5000}, Type: TypeExpenses, Date: "2024-01-20", Category: "Rent"},
		{ID: 3, Amount: Money{1250}, Type: TypeExpenses, Date: "2024-02-03", Category: "Groceries"},
		{ID: 4, Amount: Money{90000}, Type: TypeIncome, Date: "2024-02-28", Category: "Rent"},
		{ID: 5, Amount: Money{4200}, Type: TypeExpenses, Month: "Sep/2025"},
	}
}

func ids(ts []Transaction) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestFilterIdentity(t *testing.T) {
	in := sample()
	got := Filter(in, Criteria{})
	if !slices.Equal(got, in) {
		t.Fatalf("empty criteria must return input unchanged")
	}
	all := Filter(in, Criteria{MonthKey: AllOption, Type: AllOption})
	if !slices.Equal(all, in) {
		t.Fatalf("\"all\" must disable month and type")
	}
	if !(Criteria{Type: AllOption}).IsZero() {
		t.Fatalf("expected zero criteria")
	}
	got[0].Category = "changed"
	if in[0].Category != "Salary" {
		t.Fatalf("unfiltered result must not alias the input")
	}
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name string
		c    Criteria
		want []int64
	}{
		{"search amount", Criteria{SearchText: "50"}, []int64{1, 2}},
		{"search fractional amount", Criteria{SearchText: "12.5"}, []int64{3}},
		{"search category case-insensitive", Criteria{SearchText: "rENT"}, []int64{2, 4}},
		{"search month key", Criteria{SearchText: "feb/"}, []int64{3, 4}},
		{"search fallback month", Criteria{SearchText: "sep"}, []int64{5}},
		{"search type", Criteria{SearchText: "income"}, []int64{1, 4}},
		{"month exact", Criteria{MonthKey: "Jan/2024"}, []int64{1, 2}},
		{"month is not substring", Criteria{MonthKey: "Jan"}, nil},
		{"type exact", Criteria{Type: "expenses"}, []int64{2, 3, 5}},
		{"category substring", Criteria{Category: "gro"}, []int64{3}},
		{"conjunction", Criteria{Type: "income", Category: "Rent"}, []int64{4}},
		{"conjunction all axes", Criteria{SearchText: "2024", MonthKey: "Jan/2024", Type: "expenses", Category: "re"}, []int64{2}},
		{"category on uncategorised row", Criteria{Category: "x"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(sample(), tc.c))
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFilterDoesNotMutate(t *testing.T) {
	in := sample()
	before := slices.Clone(in)
	_ = Filter(in, Criteria{SearchText: "a"})
	_ = Normalized(in)
	if !slices.Equal(in, before) {
		t.Fatalf("input was mutated")
	}
}

func TestAvailableMonthKeys(t *testing.T) {
	set := AvailableMonthKeys(sample())
	if len(set) != 3 {
		t.Fatalf("expected 3 keys, got %v", set)
	}
	got := SortedMonthKeys(set)
	want := []string{"Jan/2024", "Feb/2024", "Sep/2025"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNormalized(t *testing.T) {
	in := []Transaction{
		{ID: 1, Date: "2024-03-09", Month: "stale"},
		{ID: 2},
	}
	got := Normalized(in)
	if got[0].Month != "Mar/2024" || got[1].Month != UnknownMonthKey {
		t.Fatalf("unexpected %+v", got)
	}
	if got[0].Date != "2024-03-09" {
		t.Fatalf("date must be preserved")
	}
}
