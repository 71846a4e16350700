package sheets

import (
	"context"
	"strconv"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// Mirror keeps a copy of every user's transactions outside the primary
	// store. Calls are idempotent so redelivered events are harmless.
	Mirror interface {
		// UpsertTransaction writes t, replacing any row with the same id.
		UpsertTransaction(ctx context.Context, t core.Transaction) error
		// RemoveTransaction is a no-op when the row is already gone.
		RemoveTransaction(ctx context.Context, userID, id int64) error
		RemoveUser(ctx context.Context, userID int64) error
	}
)

// Header names the mirror columns in order.
var Header = []string{"ID", "UserID", "Date", "Month", "Category", "Type", "Amount"}

// Row renders t in Header order. Amounts use two decimals so the sheet can
// sum them.
func Row(t core.Transaction) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		strconv.FormatInt(t.UserID, 10),
		t.Date,
		core.MonthKey(t),
		t.Category,
		string(t.Type),
		t.Amount.Fixed(),
	}
}
