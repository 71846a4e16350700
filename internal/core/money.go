// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// maxAmount keeps cents well inside int64 after shifting.
var maxAmount = decimal.New(1, 15)

// ParseAmount converts a decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// on the third decimal place. Signs, exponents, zero and anything that is not
// a plain decimal number are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents
//	ParseAmount("12.344") -> 1234 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents and rejects non-positive or oversized values.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2).IntPart()
	m := Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the shortest decimal form: 150, 12.5, 0.01.
func (m Money) String() string {
	return m.Decimal().String()
}

// Float64 is for chart axes only. Use cents for arithmetic.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// Fixed renders two decimal places, for reports.
func (m Money) Fixed() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}
