package dto

import (
	"time"

	"wallet/internal/core"
	"wallet/internal/viewmodel"
)

type TypeBalance struct {
	Type         string `json:"type"`
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
}

// Summary is the home screen plus the account and subscription
// aggregates.
type Summary struct {
	TotalBalance          string        `json:"total_balance"`
	TotalBalanceCents     int64         `json:"total_balance_cents"`
	AccountCount          int           `json:"account_count"`
	BalanceByType         []TypeBalance `json:"balance_by_type"`
	TransactionsThisMonth int           `json:"transactions_this_month"`
	Recent                []Transaction `json:"recent"`
	SubscriptionsMonthly  string        `json:"subscriptions_monthly"`
	SubscriptionsYearly   string        `json:"subscriptions_yearly"`
	AsOf                  time.Time     `json:"as_of"`
}

func NewSummary(home viewmodel.HomeState, accounts viewmodel.AccountState, subs viewmodel.SubscriptionState) Summary {
	byType := make([]TypeBalance, len(accounts.BalanceByType))
	for i, tb := range accounts.BalanceByType {
		byType[i] = TypeBalance{Type: tb.Type, Balance: tb.Balance.String(), BalanceCents: tb.Balance.Cents}
	}
	return Summary{
		TotalBalance:          home.TotalBalance.String(),
		TotalBalanceCents:     home.TotalBalance.Cents,
		AccountCount:          home.AccountCount,
		BalanceByType:         byType,
		TransactionsThisMonth: home.TransactionsThisMonth,
		Recent:                FromTransactions(home.Recent),
		SubscriptionsMonthly:  subs.MonthlyTotal.String(),
		SubscriptionsYearly:   subs.YearlyTotal.String(),
		AsOf:                  home.AsOf,
	}
}

type MonthGroup struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TransactionList is a filtered transaction list with its totals.
type TransactionList struct {
	AccountName  string        `json:"account_name,omitempty"`
	Transactions []Transaction `json:"transactions"`
	Months       []MonthGroup  `json:"months"`
	Count        int           `json:"count"`
	Income       string        `json:"income"`
	Expenses     string        `json:"expenses"`
}

// NewTransactionList totals txs, which must already be filtered and in
// list order. Months are grouped in loc, UTC when nil.
func NewTransactionList(accountName string, txs []core.Transaction, loc *time.Location) TransactionList {
	income, expenses := core.IncomeAndExpenses(txs)
	groups := core.GroupByMonth(txs, loc)
	months := make([]MonthGroup, len(groups))
	for i, g := range groups {
		months[i] = MonthGroup{Label: g.Label, Count: len(g.Transactions)}
	}
	return TransactionList{
		AccountName:  accountName,
		Transactions: FromTransactions(txs),
		Months:       months,
		Count:        len(txs),
		Income:       income.String(),
		Expenses:     expenses.String(),
	}
}

// FromActivity converts a view-model account activity.
func FromActivity(a viewmodel.AccountActivity) TransactionList {
	return NewTransactionList(a.AccountName, a.Transactions, a.Location)
}

// SubscriptionList is the subscription list with its cost totals.
type SubscriptionList struct {
	Subscriptions []Subscription `json:"subscriptions"`
	MonthlyTotal  string         `json:"monthly_total"`
	YearlyTotal   string         `json:"yearly_total"`
}

func NewSubscriptionList(subs []core.Subscription) SubscriptionList {
	monthly, yearly := core.SubscriptionTotals(subs)
	return SubscriptionList{
		Subscriptions: FromSubscriptions(subs),
		MonthlyTotal:  monthly.String(),
		YearlyTotal:   yearly.String(),
	}
}

// AccountList is the account list with its balance aggregates.
type AccountList struct {
	Accounts      []Account     `json:"accounts"`
	TotalBalance  string        `json:"total_balance"`
	BalanceByType []TypeBalance `json:"balance_by_type"`
}

func NewAccountList(accounts []core.Account) AccountList {
	groups := core.BalanceByType(accounts)
	byType := make([]TypeBalance, len(groups))
	for i, tb := range groups {
		byType[i] = TypeBalance{Type: tb.Type, Balance: tb.Balance.String(), BalanceCents: tb.Balance.Cents}
	}
	return AccountList{
		Accounts:      FromAccounts(accounts),
		TotalBalance:  core.TotalBalance(accounts).String(),
		BalanceByType: byType,
	}
}
