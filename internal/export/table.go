package export

import (
	"io"

	"fintrack/internal/core"

	"github.com/olekukonko/tablewriter"
)

// WriteTable prints one row per month and a totals footer.
func WriteTable(w io.Writer, months []core.MonthSummary, summary core.Summary) error {
	if len(months) == 0 {
		return ErrNothingToExport
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Month", "Income", "Expenses", "Net"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, m := range months {
		table.Append([]string{m.MonthKey, m.Income.Fixed(), m.Expenses.Fixed(), m.Income.Sub(m.Expenses).Fixed()})
	}
	table.SetFooter([]string{"Total", summary.TotalIncome.Fixed(), summary.TotalExpenses.Fixed(), summary.Balance.Fixed()})
	table.Render()
	return nil
}

// WriteHistoryTable prints transactions in the same columns as WriteCSV.
func WriteHistoryTable(w io.Writer, ts []core.Transaction) error {
	if len(ts) == 0 {
		return ErrNothingToExport
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	for _, t := range core.Normalized(ts) {
		table.Append(row(t, ""))
	}
	table.Render()
	return nil
}
