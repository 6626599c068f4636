// Package core provides money parsing and handling utilities.
//
// Amounts are held as signed integer cents. Parsing and any arithmetic that
// can produce fractions of a cent (billing cycle conversion) goes through
// shopspring/decimal and is rounded back to cents at the edge.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// Weekly charges are converted with 4.33 weeks per month.
var weeksPerMonth = decimal.RequireFromString("4.33")

var monthsPerYear = decimal.NewFromInt(12)

func Cents(c int64) Money { return Money{Cents: c} }

// Validate rejects zero and negative magnitudes.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two decimals and a dot separator.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the value as a float64 for display purposes only.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// MoneyFromDecimal rounds d to the cent.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseDecimalToCents converts a positive decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Negative and zero values are rejected.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	m, err := ParseSignedAmount(s)
	if err != nil {
		return 0, err
	}
	if m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// ParseSignedAmount parses a possibly negative decimal string, used for
// account balances.
func ParseSignedAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Keep Shift(2).IntPart() inside int64.
	if d.Abs().GreaterThan(decimal.New(1, 16)) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

func (c BillingCycle) monthly(amount Money) decimal.Decimal {
	d := amount.Decimal()
	switch c {
	case Weekly:
		return d.Mul(weeksPerMonth)
	case Annual:
		return d.Div(monthsPerYear)
	default:
		return d
	}
}
