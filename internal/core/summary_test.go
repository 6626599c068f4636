package core

import (
	"testing"
	"time"
)

func TestTotalBalanceAndByType(t *testing.T) {
	accounts := []Account{
		{Name: "Main", Type: "Bank", Balance: Cents(100000)},
		{Name: "Card", Type: "Credit", Balance: Cents(-25000)},
		{Name: "Savings", Type: "Bank", Balance: Cents(50000)},
		{Name: "Jar", Balance: Cents(1234)},
	}
	if got := TotalBalance(accounts); got.Cents != 126234 {
		t.Fatalf("total: expected 126234, got %d", got.Cents)
	}
	groups := BalanceByType(accounts)
	want := []TypeBalance{
		{"Bank", Cents(150000)},
		{"Credit", Cents(-25000)},
		{"Other", Cents(1234)},
	}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %v", len(want), groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("group %d: expected %+v, got %+v", i, want[i], groups[i])
		}
	}
}

func TestGroupByMonth(t *testing.T) {
	txs := []Transaction{
		{Title: "c", Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)},
		{Title: "b", Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "a", Date: time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC)},
	}
	groups := GroupByMonth(txs, nil)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Label != "March 2025" || len(groups[0].Transactions) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Label != "February 2025" || groups[1].Transactions[0].Title != "a" {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}

func TestGroupByMonthUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 21:00 on Jan 31 in New York, stored as UTC.
	tx := Transaction{Title: "late", Date: time.Date(2024, 1, 31, 21, 0, 0, 0, ny).UTC()}

	if got := GroupByMonth([]Transaction{tx}, ny)[0]; got.Label != "January 2024" || got.Month != time.January {
		t.Fatalf("expected January 2024 in New York, got %+v", got)
	}
	if got := GroupByMonth([]Transaction{tx}, nil)[0]; got.Label != "February 2024" {
		t.Fatalf("expected February 2024 in UTC, got %+v", got)
	}
	if n := CountInMonth([]Transaction{tx}, time.Date(2024, 1, 15, 12, 0, 0, 0, ny)); n != 1 {
		t.Fatalf("expected the transaction counted in January, got %d", n)
	}
}

func TestIncomeAndExpenses(t *testing.T) {
	txs := []Transaction{
		{AccountName: "Main", Amount: Cents(5000)},
		{AccountName: "Main", Amount: Cents(120000), IsIncome: true},
		{AccountName: "Cash", Amount: Cents(300)},
	}
	main := FilterByAccount(txs, "Main")
	in, out := IncomeAndExpenses(main)
	if len(main) != 2 || in.Cents != 120000 || out.Cents != 5000 {
		t.Fatalf("unexpected: len=%d in=%d out=%d", len(main), in.Cents, out.Cents)
	}
}

func TestCountInMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)},
	}
	if got := CountInMonth(txs, now); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestSubscriptionTotals(t *testing.T) {
	subs := []Subscription{
		{Amount: Cents(1000), BillingCycle: Monthly, IsActive: true},
		{Amount: Cents(12000), BillingCycle: Annual, IsActive: true},
		{Amount: Cents(500), BillingCycle: Weekly, IsActive: true},
		{Amount: Cents(9999), BillingCycle: Monthly, IsActive: false},
	}
	monthly, yearly := SubscriptionTotals(subs)
	// 10.00 + 10.00 + 21.65
	if monthly.Cents != 4165 {
		t.Fatalf("monthly: expected 4165, got %d", monthly.Cents)
	}
	if yearly.Cents != 49980 {
		t.Fatalf("yearly: expected 49980, got %d", yearly.Cents)
	}
}
