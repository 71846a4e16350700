package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/services"
)

type messageResponse struct {
	Msg string `json:"msg"`
}

// transactionJSON is the wire form of a transaction. Absent dates and
// months are null; amount is a JSON number.
type transactionJSON struct {
	ID       int64       `json:"id"`
	UserID   int64       `json:"user_id"`
	Amount   json.Number `json:"amount"`
	Type     string      `json:"type"`
	Category *string     `json:"category"`
	Date     *string     `json:"date"`
	Month    *string     `json:"month"`
	MonthKey string      `json:"month_key"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

type summaryJSON struct {
	TotalIncome   json.Number `json:"total_income"`
	TotalExpenses json.Number `json:"total_expenses"`
	Balance       json.Number `json:"balance"`
}

type monthJSON struct {
	Month    string      `json:"month"`
	Income   json.Number `json:"income"`
	Expenses json.Number `json:"expenses"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func number(m core.Money) json.Number {
	return json.Number(m.String())
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       t.ID,
		UserID:   t.UserID,
		Amount:   number(t.Amount),
		Type:     string(t.Type),
		Category: nullable(t.Category),
		Date:     nullable(t.Date),
		Month:    nullable(t.Month),
		MonthKey: core.MonthKey(t),
	}
}

func toTransactionsJSON(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(ts))
	for i, t := range ts {
		out[i] = toTransactionJSON(t)
	}
	return out
}

func toSummaryJSON(s core.Summary) summaryJSON {
	return summaryJSON{
		TotalIncome:   number(s.TotalIncome),
		TotalExpenses: number(s.TotalExpenses),
		Balance:       number(s.Balance),
	}
}

func toMonthsJSON(ms []core.MonthSummary) []monthJSON {
	out := make([]monthJSON, len(ms))
	for i, m := range ms {
		out[i] = monthJSON{Month: m.MonthKey, Income: number(m.Income), Expenses: number(m.Expenses)}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Msg: msg})
}

// statusFor maps domain errors to a status and the message shown to the
// client. Unknown errors are internal and never echoed.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptyEmail),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, export.ErrUnknownChart),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error(), applog.ErrorTypeValidation
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", applog.ErrorTypeAuth
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Missing or invalid token", applog.ErrorTypeAuth
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, "Not found", applog.ErrorTypeNotFound
	case errors.Is(err, ports.ErrConflict):
		return http.StatusConflict, "username or email already exists", applog.ErrorTypeConflict
	case errors.Is(err, export.ErrNothingToExport):
		return http.StatusUnprocessableEntity, "No transactions to export.", applog.ErrorTypeValidation
	default:
		return http.StatusInternalServerError, "Internal server error", applog.ErrorTypeInternal
	}
}

// writeError logs err on the request logger and writes the mapped
// response. op names the failed operation; notFound, when set, replaces
// the generic not-found message.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error, notFound ...string) {
	status, msg, errType := statusFor(err)
	if status == http.StatusNotFound && len(notFound) > 0 {
		msg = notFound[0]
	}
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, errType, op, nil)
	} else {
		logger.WarnContext(r.Context(), "Request rejected",
			applog.FieldOperation, op,
			applog.FieldErrorType, errType,
			applog.FieldError, err.Error(),
			applog.FieldStatusCode, status)
	}
	writeMessage(w, status, msg)
}
