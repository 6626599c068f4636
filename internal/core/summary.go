package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeBalance is a balance aggregated by account type.
type TypeBalance struct {
	Type    string
	Balance Money
}

// MonthGroup collects the transactions of one calendar month.
type MonthGroup struct {
	Label        string // "January 2006"
	Year         int
	Month        time.Month
	Transactions []Transaction
}

// MonthLabel formats the grouping key for a month.
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// TotalBalance sums the signed balances of all accounts.
func TotalBalance(accounts []Account) Money {
	var total Money
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// BalanceByType groups balances by account type, "Other" for untyped
// accounts. Groups keep the order in which their type first appears.
func BalanceByType(accounts []Account) []TypeBalance {
	idx := make(map[string]int)
	var out []TypeBalance
	for _, a := range accounts {
		key := a.GroupType()
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, TypeBalance{Type: key})
		}
		out[i].Balance = out[i].Balance.Add(a.Balance)
	}
	return out
}

// GroupByMonth buckets transactions by calendar month of Date as seen in loc
// (UTC when nil), the same calendar CountInMonth and month filters use.
// Input order is kept inside each group and groups appear in first-seen
// order, so a date-descending input yields newest month first.
func GroupByMonth(txs []Transaction, loc *time.Location) []MonthGroup {
	if loc == nil {
		loc = time.UTC
	}
	type key struct {
		y int
		m time.Month
	}
	idx := make(map[key]int)
	var out []MonthGroup
	for _, t := range txs {
		d := t.Date.In(loc)
		k := key{d.Year(), d.Month()}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, MonthGroup{Label: MonthLabel(d), Year: k.y, Month: k.m})
		}
		out[i].Transactions = append(out[i].Transactions, t)
	}
	return out
}

// FilterByAccount keeps transactions whose AccountName matches name exactly.
func FilterByAccount(txs []Transaction, name string) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if t.AccountName == name {
			out = append(out, t)
		}
	}
	return out
}

// IncomeAndExpenses returns the income and expense magnitudes.
func IncomeAndExpenses(txs []Transaction) (income, expenses Money) {
	for _, t := range txs {
		if t.IsIncome {
			income = income.Add(t.Amount)
		} else {
			expenses = expenses.Add(t.Amount)
		}
	}
	return income, expenses
}

// CountInMonth counts transactions dated in the same calendar year and month
// as now, compared in now's location.
func CountInMonth(txs []Transaction, now time.Time) int {
	y, m, _ := now.Date()
	n := 0
	for _, t := range txs {
		ty, tm, _ := t.Date.In(now.Location()).Date()
		if ty == y && tm == m {
			n++
		}
	}
	return n
}

// SubscriptionTotals returns the monthly and yearly cost of the active
// subscriptions. Both are computed from the unrounded monthly sum.
func SubscriptionTotals(subs []Subscription) (monthly, yearly Money) {
	sum := decimal.Zero
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		sum = sum.Add(s.BillingCycle.monthly(s.Amount))
	}
	return MoneyFromDecimal(sum), MoneyFromDecimal(sum.Mul(monthsPerYear))
}
