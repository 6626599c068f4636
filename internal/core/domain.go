package core

import (
	"errors"
	"strings"
	"time"
)

// Kind names a record kind held by the store.
type Kind string

const (
	KindAccount      Kind = "account"
	KindTransaction  Kind = "transaction"
	KindSubscription Kind = "subscription"
)

// BillingCycle is the recurrence period of a subscription charge.
type BillingCycle string

const (
	Weekly  BillingCycle = "Weekly"
	Monthly BillingCycle = "Monthly"
	Annual  BillingCycle = "Annual"
)

// DefaultAccountType is the grouping key used when an account has no type.
const DefaultAccountType = "Other"

type (
	Account struct {
		ID        string
		Name      string
		Type      string // free-form: "Bank", "Credit", "Cash"...
		Balance   Money  // signed, credit accounts go negative
		Color     string // opaque UI tag
		CreatedAt time.Time
	}

	// Transaction stores an unsigned magnitude; IsIncome carries the sign.
	Transaction struct {
		ID          string
		Title       string
		Amount      Money
		IsIncome    bool
		AccountName string // references Account.Name, not Account.ID
		Category    string
		Date        time.Time
		Notes       string
		CreatedAt   time.Time
	}

	Subscription struct {
		ID              string
		Name            string
		Amount          Money // charge per billing cycle
		BillingCycle    BillingCycle
		NextPaymentDate time.Time
		IsActive        bool
		Category        string
		AccountName     string // account charged when the payment is processed
		CreatedAt       time.Time
	}
)

// Patches name the fields an update overwrites; nil fields are left alone.
type (
	AccountPatch struct {
		Name    *string
		Type    *string
		Balance *Money
		Color   *string
	}

	TransactionPatch struct {
		Title       *string
		Amount      *Money
		IsIncome    *bool
		AccountName *string
		Category    *string
		Date        *time.Time
		Notes       *string
	}

	SubscriptionPatch struct {
		Name            *string
		Amount          *Money
		BillingCycle    *BillingCycle
		NextPaymentDate *time.Time
		IsActive        *bool
		Category        *string
		AccountName     *string
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrEmptyTitle          = errors.New("empty title")
	ErrTitleTooLong        = errors.New("title too long (max 200 characters)")
	ErrInvalidBillingCycle = errors.New("invalid billing cycle")
	ErrZeroDate            = errors.New("date cannot be zero")
	ErrDateOutOfRange      = errors.New("date out of range (1900-01-01 to 2199-12-31)")
)

// Record dates must fall in [MinDate, MaxDate). Storage keeps dates as unix
// nanoseconds, which only cover the years 1678 to 2262.
var (
	MinDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

func validateDate(t time.Time) error {
	if t.IsZero() {
		return ErrZeroDate
	}
	if t.Before(MinDate) || !t.Before(MaxDate) {
		return ErrDateOutOfRange
	}
	return nil
}

const (
	maxNameLen  = 100
	maxTitleLen = 200
)

// ParseBillingCycle accepts the canonical labels case-insensitively, plus
// "yearly"/"annually" for Annual.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	case "annual", "annually", "yearly":
		return Annual, nil
	}
	return "", ErrInvalidBillingCycle
}

func (c BillingCycle) Valid() bool {
	switch c {
	case Weekly, Monthly, Annual:
		return true
	}
	return false
}

// Next returns the payment date one cycle after t.
func (c BillingCycle) Next(t time.Time) time.Time {
	return c.Advance(t, 1)
}

// Advance returns the date n cycles after t. Month-based cycles keep t's
// day of month where the target month has it and use the month's last day
// otherwise, so Advance(Jan 31, 2) is Mar 31 rather than Mar 28.
func (c BillingCycle) Advance(t time.Time, n int) time.Time {
	switch c {
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case Annual:
		return addMonthsClamped(t, 12*n)
	default:
		return addMonthsClamped(t, n)
	}
}

// addMonthsClamped moves t forward n months, pinning the day to the last day
// of the target month instead of overflowing (Jan 31 + 1 month = Feb 28).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return first.AddDate(0, 0, d-1)
}

// GroupType returns the balance grouping key for the account.
func (a Account) GroupType() string {
	if strings.TrimSpace(a.Type) == "" {
		return DefaultAccountType
	}
	return a.Type
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > maxNameLen {
		return ErrNameTooLong
	}
	return nil
}

// Apply returns a copy of a with the patch's fields overwritten.
func (a Account) Apply(p AccountPatch) Account {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	return a
}

// Signed returns the amount with income positive and expenses negative.
func (t Transaction) Signed() Money {
	if t.IsIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > maxTitleLen {
		return ErrTitleTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return validateDate(t.Date)
}

func (t Transaction) Apply(p TransactionPatch) Transaction {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.IsIncome != nil {
		t.IsIncome = *p.IsIncome
	}
	if p.AccountName != nil {
		t.AccountName = *p.AccountName
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > maxNameLen {
		return ErrNameTooLong
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.BillingCycle.Valid() {
		return ErrInvalidBillingCycle
	}
	return validateDate(s.NextPaymentDate)
}

func (s Subscription) Apply(p SubscriptionPatch) Subscription {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.BillingCycle != nil {
		s.BillingCycle = *p.BillingCycle
	}
	if p.NextPaymentDate != nil {
		s.NextPaymentDate = *p.NextPaymentDate
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.AccountName != nil {
		s.AccountName = *p.AccountName
	}
	return s
}

// MonthlyEquivalent converts the per-cycle charge into a monthly amount,
// rounded half away from zero to the cent.
func (s Subscription) MonthlyEquivalent() Money {
	return MoneyFromDecimal(s.BillingCycle.monthly(s.Amount))
}
