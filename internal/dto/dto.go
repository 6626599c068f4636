// Package dto holds the JSON shapes of records and aggregates exchanged by
// the HTTP API and printed by the CLI, and the request types that parse
// user input into core records.
package dto

import (
	"fmt"
	"strings"
	"time"

	"wallet/internal/core"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Balance      string    `json:"balance"`
	BalanceCents int64     `json:"balance_cents"`
	Color        string    `json:"color,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Transaction struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	IsIncome    bool      `json:"is_income"`
	AccountName string    `json:"account_name"`
	Category    string    `json:"category,omitempty"`
	Date        string    `json:"date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Subscription struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Amount            string    `json:"amount"`
	AmountCents       int64     `json:"amount_cents"`
	BillingCycle      string    `json:"billing_cycle"`
	NextPaymentDate   string    `json:"next_payment_date"`
	IsActive          bool      `json:"is_active"`
	Category          string    `json:"category,omitempty"`
	AccountName       string    `json:"account_name,omitempty"`
	MonthlyEquivalent string    `json:"monthly_equivalent"`
	CreatedAt         time.Time `json:"created_at"`
}

func FromAccount(a core.Account) Account {
	return Account{
		ID:           a.ID,
		Name:         a.Name,
		Type:         a.Type,
		Balance:      a.Balance.String(),
		BalanceCents: a.Balance.Cents,
		Color:        a.Color,
		CreatedAt:    a.CreatedAt,
	}
}

func FromTransaction(t core.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		Title:       t.Title,
		Amount:      t.Amount.String(),
		AmountCents: t.Amount.Cents,
		IsIncome:    t.IsIncome,
		AccountName: t.AccountName,
		Category:    t.Category,
		Date:        t.Date.Format(DateLayout),
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
	}
}

func FromSubscription(s core.Subscription) Subscription {
	return Subscription{
		ID:                s.ID,
		Name:              s.Name,
		Amount:            s.Amount.String(),
		AmountCents:       s.Amount.Cents,
		BillingCycle:      string(s.BillingCycle),
		NextPaymentDate:   s.NextPaymentDate.Format(DateLayout),
		IsActive:          s.IsActive,
		Category:          s.Category,
		AccountName:       s.AccountName,
		MonthlyEquivalent: s.MonthlyEquivalent().String(),
		CreatedAt:         s.CreatedAt,
	}
}

// mapSlice converts every element; a nil input becomes an empty slice so
// JSON lists are never null.
func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func FromAccounts(in []core.Account) []Account { return mapSlice(in, FromAccount) }

func FromTransactions(in []core.Transaction) []Transaction { return mapSlice(in, FromTransaction) }

func FromSubscriptions(in []core.Subscription) []Subscription {
	return mapSlice(in, FromSubscription)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp. Calendar
// dates are midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses "YYYY-MM" into the first instant of that month, UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return t, nil
}
