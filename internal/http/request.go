package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("invalid request")

// flexAmount accepts an amount sent either as a JSON number or a string.
// Parsing and validation happen in core.ParseAmount.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		// Plain decimal form, so exponent numbers such as 1e2 parse.
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = flexAmount(d.String())
	}
	return nil
}

type transactionRequest struct {
	Amount   flexAmount `json:"amount"`
	Type     string     `json:"type"`
	Date     string     `json:"date"`
	Month    string     `json:"month"`
	Category string     `json:"category"`
}

func (t transactionRequest) input() services.TransactionInput {
	return services.TransactionInput{
		Amount:   string(t.Amount),
		Type:     t.Type,
		Date:     t.Date,
		Month:    t.Month,
		Category: t.Category,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: transaction id %q", errBadRequest, raw)
	}
	return id, nil
}

// criteriaFromQuery reads the history filters. Absent parameters and the
// "all" option leave an axis unconstrained.
func criteriaFromQuery(q url.Values) core.Criteria {
	return core.Criteria{
		SearchText: strings.TrimSpace(q.Get("search")),
		MonthKey:   strings.TrimSpace(q.Get("month")),
		Type:       strings.TrimSpace(q.Get("type")),
		Category:   strings.TrimSpace(q.Get("category")),
	}
}
