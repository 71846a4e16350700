// Package export renders transaction history and monthly totals as CSV,
// PDF, PNG charts and plain-text tables.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"fintrack/internal/core"
)

// ErrNothingToExport is returned instead of writing an empty document.
var ErrNothingToExport = errors.New("no transactions to export")

var columns = []string{"Date", "Month", "Category", "Type", "Amount"}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// row renders t the way every tabular export shows it. t must come from
// core.Normalized so Month holds the month key.
func row(t core.Transaction, amountPrefix string) []string {
	return []string{
		orDash(t.Date),
		t.Month,
		orDash(t.Category),
		string(t.Type),
		amountPrefix + t.Amount.String(),
	}
}

// WriteCSV writes a header row and one row per transaction, in order.
func WriteCSV(w io.Writer, ts []core.Transaction) error {
	if len(ts) == 0 {
		return ErrNothingToExport
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range core.Normalized(ts) {
		if err := cw.Write(row(t, "")); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
