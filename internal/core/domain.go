package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome   TransactionType = "income"
	TypeExpenses TransactionType = "expenses"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is one recorded income or expense event. Date holds the raw
	// ISO string as stored and may be empty; Month is an optional fallback
	// label used when Date is absent.
	Transaction struct {
		ID       int64
		UserID   int64
		Amount   Money
		Type     TransactionType
		Date     string
		Month    string
		Category string
	}

	User struct {
		ID           int64
		Username     string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrCategoryTooLong  = errors.New("category too long (max 100 characters)")
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyEmail       = errors.New("empty email")
	ErrPasswordTooShort = errors.New("password too short (min 6 characters)")
	ErrPasswordTooLong  = errors.New("password too long (max 72 bytes)")
)

// ParseTransactionType maps user input to a known type. Empty input defaults
// to expenses, matching the creation form default.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeExpenses:
		return TypeExpenses, nil
	case TypeIncome:
		return TypeIncome, nil
	default:
		return "", ErrInvalidType
	}
}

func (tt TransactionType) Valid() bool {
	return tt == TypeIncome || tt == TypeExpenses
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate enforces the creation/edit contract. Stored rows are never
// re-validated on read.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date != "" {
		if _, ok := ParseDate(t.Date); !ok {
			return ErrInvalidDate
		}
	}
	if len(t.Category) > 100 {
		return ErrCategoryTooLong
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

// ParseDate accepts a calendar date (2006-01-02) or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
