package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
)

func ptr[T any](v T) *T { return &v }

func TestCreateAccountRequest(t *testing.T) {
	a, err := CreateAccountRequest{Name: " Main ", Type: "Bank", Balance: "-1250,75"}.ToAccount()
	require.NoError(t, err)
	assert.Equal(t, "Main", a.Name)
	assert.Equal(t, int64(-125075), a.Balance.Cents)

	a, err = CreateAccountRequest{Name: "Empty"}.ToAccount()
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())

	_, err = CreateAccountRequest{Name: "Bad", Balance: "abc"}.ToAccount()
	assert.True(t, core.IsValidation(err))
}

func TestCreateTransactionRequest(t *testing.T) {
	tx, err := CreateTransactionRequest{
		Title: "Coffee", Amount: "3.50", AccountName: "Main", Date: "2024-03-15",
	}.ToTransaction()
	require.NoError(t, err)
	assert.Equal(t, int64(350), tx.Amount.Cents)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)

	tx, err = CreateTransactionRequest{Title: "No date", Amount: "1"}.ToTransaction()
	require.NoError(t, err)
	assert.True(t, tx.Date.IsZero(), "zero date is left for the store to default")

	tests := []struct {
		name string
		req  CreateTransactionRequest
	}{
		{"negative amount", CreateTransactionRequest{Title: "x", Amount: "-5"}},
		{"zero amount", CreateTransactionRequest{Title: "x", Amount: "0"}},
		{"bad date", CreateTransactionRequest{Title: "x", Amount: "5", Date: "15/03/2024"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.ToTransaction()
			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, core.KindTransaction, ve.Kind)
		})
	}
}

func TestCreateSubscriptionRequest(t *testing.T) {
	s, err := CreateSubscriptionRequest{
		Name: "Netflix", Amount: "15.99", BillingCycle: "monthly", NextPaymentDate: "2024-04-01",
	}.ToSubscription()
	require.NoError(t, err)
	assert.Equal(t, core.Monthly, s.BillingCycle)
	assert.True(t, s.IsActive, "subscriptions start active")

	s, err = CreateSubscriptionRequest{
		Name: "Gym", Amount: "30", BillingCycle: "Annual", NextPaymentDate: "2024-04-01", IsActive: ptr(false),
	}.ToSubscription()
	require.NoError(t, err)
	assert.False(t, s.IsActive)

	_, err = CreateSubscriptionRequest{Name: "x", Amount: "1", BillingCycle: "daily", NextPaymentDate: "2024-04-01"}.ToSubscription()
	assert.True(t, core.IsValidation(err))
	_, err = CreateSubscriptionRequest{Name: "x", Amount: "1", BillingCycle: "Weekly"}.ToSubscription()
	assert.True(t, core.IsValidation(err), "next payment date is required")
}

func TestUpdateRequestsOnlySetGivenFields(t *testing.T) {
	p, err := UpdateAccountRequest{Balance: ptr("10")}.ToPatch()
	require.NoError(t, err)
	assert.Nil(t, p.Name)
	require.NotNil(t, p.Balance)
	assert.Equal(t, int64(1000), p.Balance.Cents)

	tp, err := UpdateTransactionRequest{Title: ptr(" Rent "), Date: ptr("2024-02-29")}.ToPatch()
	require.NoError(t, err)
	assert.Equal(t, "Rent", *tp.Title)
	assert.Nil(t, tp.Amount)
	assert.Equal(t, 29, tp.Date.Day())

	sp, err := UpdateSubscriptionRequest{BillingCycle: ptr("yearly"), IsActive: ptr(false)}.ToPatch()
	require.NoError(t, err)
	assert.Equal(t, core.Annual, *sp.BillingCycle)
	assert.False(t, *sp.IsActive)

	_, err = UpdateTransactionRequest{Amount: ptr("0")}.ToPatch()
	assert.True(t, core.IsValidation(err))
}

func TestTransactionJSON(t *testing.T) {
	tx := core.Transaction{
		ID: "t1", Title: "Salary", Amount: core.Cents(350000), IsIncome: true,
		AccountName: "Main", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(FromTransaction(tx))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount":"3500.00"`)
	assert.Contains(t, string(data), `"date":"2024-03-01"`)
	assert.NotContains(t, string(data), `"notes"`)
}

func TestEmptyListsMarshalAsArrays(t *testing.T) {
	data, err := json.Marshal(NewTransactionList("", nil, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transactions":[]`)
	assert.Contains(t, string(data), `"income":"0.00"`)
}

func TestNewTransactionListTotals(t *testing.T) {
	txs := []core.Transaction{
		{Title: "a", Amount: core.Cents(5000), AccountName: "Main", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "b", Amount: core.Cents(1000), IsIncome: true, AccountName: "Main", Date: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
	}
	l := NewTransactionList("Main", txs, time.UTC)
	assert.Equal(t, 2, l.Count)
	assert.Equal(t, "50.00", l.Expenses)
	assert.Equal(t, "10.00", l.Income)
	assert.Equal(t, []MonthGroup{{Label: "March 2024", Count: 1}, {Label: "February 2024", Count: 1}}, l.Months)
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.February, m.Month())
	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("en")
	assert.Equal(t, "25,430.50", f.Money(core.Cents(2543050)))
	assert.Equal(t, "-1,250.75", f.Money(core.Cents(-125075)))
	assert.Equal(t, "0.00", f.Money(core.Money{}))
	assert.Equal(t, "12,000", f.Count(12000))

	assert.Equal(t, "340.00", NewFormatter("not a tag!").Money(core.Cents(34000)))
}
