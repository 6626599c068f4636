package services

import (
	"context"
	"fmt"
	"time"

	"wallet/internal/core"
	"wallet/internal/log"
)

// Seeder fills an empty store with sample data on first run.
type Seeder struct {
	store  *RecordStore
	logger *log.Logger
}

func NewSeeder(store *RecordStore, logger *log.Logger) *Seeder {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Seeder{store: store, logger: logger.WithComponent(log.ComponentSeeder)}
}

// SampleAccounts is the fixed first-run account set.
func SampleAccounts() []core.Account {
	return []core.Account{
		{Name: "Main Account", Type: "Bank", Balance: core.Cents(2543050), Color: "blue"},
		{Name: "Savings", Type: "Bank", Balance: core.Cents(1200000), Color: "green"},
		{Name: "Credit Card", Type: "Credit", Balance: core.Cents(-125075), Color: "red"},
		{Name: "Cash", Type: "Cash", Balance: core.Cents(34000), Color: "orange"},
	}
}

// SampleTransactions is the fixed first-run transaction set, dated
// relative to now.
func SampleTransactions(now time.Time) []core.Transaction {
	day := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	return []core.Transaction{
		{Title: "Salary", Amount: core.Cents(420000), IsIncome: true, AccountName: "Main Account", Category: "Income", Date: day(1)},
		{Title: "Groceries", Amount: core.Cents(8540), AccountName: "Main Account", Category: "Food", Date: day(2)},
		{Title: "Coffee", Amount: core.Cents(450), AccountName: "Cash", Category: "Food", Date: day(2)},
		{Title: "Electricity bill", Amount: core.Cents(6420), AccountName: "Main Account", Category: "Utilities", Date: day(5)},
		{Title: "Online order", Amount: core.Cents(12999), AccountName: "Credit Card", Category: "Shopping", Date: day(8)},
		{Title: "Freelance project", Amount: core.Cents(75000), IsIncome: true, AccountName: "Main Account", Category: "Income", Date: day(12)},
		{Title: "Transfer to savings", Amount: core.Cents(50000), AccountName: "Main Account", Category: "Transfer", Date: day(15)},
	}
}

// Seed inserts the sample set when both accounts and transactions are
// empty and reports whether it did. Running it again is a no-op.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	noAccounts, err := s.store.IsEmpty(ctx, core.KindAccount)
	if err != nil {
		return false, fmt.Errorf("check accounts: %w", err)
	}
	noTransactions, err := s.store.IsEmpty(ctx, core.KindTransaction)
	if err != nil {
		return false, fmt.Errorf("check transactions: %w", err)
	}
	if !noAccounts || !noTransactions {
		s.logger.DebugContext(ctx, "Store already has data, skipping seed")
		return false, nil
	}

	for _, a := range SampleAccounts() {
		if _, err := s.store.CreateAccount(ctx, a); err != nil {
			return false, fmt.Errorf("seed account %q: %w", a.Name, err)
		}
	}
	txs := SampleTransactions(s.store.now())
	for _, t := range txs {
		if _, err := s.store.CreateTransaction(ctx, t); err != nil {
			return false, fmt.Errorf("seed transaction %q: %w", t.Title, err)
		}
	}

	s.logger.InfoContext(ctx, "Seeded sample data",
		"accounts", len(SampleAccounts()),
		"transactions", len(txs))
	return true, nil
}
