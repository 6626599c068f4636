package dto

import (
	"fmt"
	"strings"

	"wallet/internal/core"
)

// Create requests carry amounts as decimal strings ("12.34" or "12,34").
// Parse failures come back as core.ValidationError so callers can map them
// to a client error.

type CreateAccountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
	Color   string `json:"color"`
}

func (r CreateAccountRequest) ToAccount() (core.Account, error) {
	a := core.Account{
		Name:  strings.TrimSpace(r.Name),
		Type:  strings.TrimSpace(r.Type),
		Color: strings.TrimSpace(r.Color),
	}
	if strings.TrimSpace(r.Balance) != "" {
		m, err := core.ParseSignedAmount(r.Balance)
		if err != nil {
			return core.Account{}, invalid(core.KindAccount, "balance", err)
		}
		a.Balance = m
	}
	return a, nil
}

type UpdateAccountRequest struct {
	Name    *string `json:"name"`
	Type    *string `json:"type"`
	Balance *string `json:"balance"`
	Color   *string `json:"color"`
}

func (r UpdateAccountRequest) ToPatch() (core.AccountPatch, error) {
	p := core.AccountPatch{Name: trimmed(r.Name), Type: trimmed(r.Type), Color: trimmed(r.Color)}
	if r.Balance != nil {
		m, err := core.ParseSignedAmount(*r.Balance)
		if err != nil {
			return core.AccountPatch{}, invalid(core.KindAccount, "balance", err)
		}
		p.Balance = &m
	}
	return p, nil
}

type CreateTransactionRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	IsIncome    bool   `json:"is_income"`
	AccountName string `json:"account_name"`
	Category    string `json:"category"`
	// Date defaults to now when empty.
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

func (r CreateTransactionRequest) ToTransaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(r.Amount)
	if err != nil {
		return core.Transaction{}, invalid(core.KindTransaction, "amount", err)
	}
	t := core.Transaction{
		Title:       strings.TrimSpace(r.Title),
		Amount:      core.Cents(cents),
		IsIncome:    r.IsIncome,
		AccountName: strings.TrimSpace(r.AccountName),
		Category:    strings.TrimSpace(r.Category),
		Notes:       strings.TrimSpace(r.Notes),
	}
	if strings.TrimSpace(r.Date) != "" {
		d, err := ParseDate(r.Date)
		if err != nil {
			return core.Transaction{}, invalid(core.KindTransaction, "date", err)
		}
		t.Date = d
	}
	return t, nil
}

type UpdateTransactionRequest struct {
	Title       *string `json:"title"`
	Amount      *string `json:"amount"`
	IsIncome    *bool   `json:"is_income"`
	AccountName *string `json:"account_name"`
	Category    *string `json:"category"`
	Date        *string `json:"date"`
	Notes       *string `json:"notes"`
}

func (r UpdateTransactionRequest) ToPatch() (core.TransactionPatch, error) {
	p := core.TransactionPatch{
		Title:       trimmed(r.Title),
		IsIncome:    r.IsIncome,
		AccountName: trimmed(r.AccountName),
		Category:    trimmed(r.Category),
		Notes:       trimmed(r.Notes),
	}
	if r.Amount != nil {
		cents, err := core.ParseDecimalToCents(*r.Amount)
		if err != nil {
			return core.TransactionPatch{}, invalid(core.KindTransaction, "amount", err)
		}
		m := core.Cents(cents)
		p.Amount = &m
	}
	if r.Date != nil {
		d, err := ParseDate(*r.Date)
		if err != nil {
			return core.TransactionPatch{}, invalid(core.KindTransaction, "date", err)
		}
		p.Date = &d
	}
	return p, nil
}

type CreateSubscriptionRequest struct {
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	BillingCycle    string `json:"billing_cycle"`
	NextPaymentDate string `json:"next_payment_date"`
	// IsActive defaults to true when omitted.
	IsActive    *bool  `json:"is_active"`
	Category    string `json:"category"`
	AccountName string `json:"account_name"`
}

func (r CreateSubscriptionRequest) ToSubscription() (core.Subscription, error) {
	cents, err := core.ParseDecimalToCents(r.Amount)
	if err != nil {
		return core.Subscription{}, invalid(core.KindSubscription, "amount", err)
	}
	cycle, err := core.ParseBillingCycle(r.BillingCycle)
	if err != nil {
		return core.Subscription{}, invalid(core.KindSubscription, "billing_cycle", err)
	}
	next, err := ParseDate(r.NextPaymentDate)
	if err != nil {
		return core.Subscription{}, invalid(core.KindSubscription, "next_payment_date", err)
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return core.Subscription{
		Name:            strings.TrimSpace(r.Name),
		Amount:          core.Cents(cents),
		BillingCycle:    cycle,
		NextPaymentDate: next,
		IsActive:        active,
		Category:        strings.TrimSpace(r.Category),
		AccountName:     strings.TrimSpace(r.AccountName),
	}, nil
}

type UpdateSubscriptionRequest struct {
	Name            *string `json:"name"`
	Amount          *string `json:"amount"`
	BillingCycle    *string `json:"billing_cycle"`
	NextPaymentDate *string `json:"next_payment_date"`
	IsActive        *bool   `json:"is_active"`
	Category        *string `json:"category"`
	AccountName     *string `json:"account_name"`
}

func (r UpdateSubscriptionRequest) ToPatch() (core.SubscriptionPatch, error) {
	p := core.SubscriptionPatch{
		Name:        trimmed(r.Name),
		IsActive:    r.IsActive,
		Category:    trimmed(r.Category),
		AccountName: trimmed(r.AccountName),
	}
	if r.Amount != nil {
		cents, err := core.ParseDecimalToCents(*r.Amount)
		if err != nil {
			return core.SubscriptionPatch{}, invalid(core.KindSubscription, "amount", err)
		}
		m := core.Cents(cents)
		p.Amount = &m
	}
	if r.BillingCycle != nil {
		c, err := core.ParseBillingCycle(*r.BillingCycle)
		if err != nil {
			return core.SubscriptionPatch{}, invalid(core.KindSubscription, "billing_cycle", err)
		}
		p.BillingCycle = &c
	}
	if r.NextPaymentDate != nil {
		d, err := ParseDate(*r.NextPaymentDate)
		if err != nil {
			return core.SubscriptionPatch{}, invalid(core.KindSubscription, "next_payment_date", err)
		}
		p.NextPaymentDate = &d
	}
	return p, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func invalid(kind core.Kind, field string, err error) error {
	return core.NewValidationError(kind, fmt.Errorf("%s: %w", field, err))
}
