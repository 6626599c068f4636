// Package storagetest holds behaviour checks shared by every
// storage.Repository implementation.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/storage"
)

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// Run exercises repo through the full CRUD and ordering contract. newRepo
// must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	t.Run("AccountCRUD", func(t *testing.T) { testAccountCRUD(t, newRepo(t)) })
	t.Run("AccountOrdering", func(t *testing.T) { testAccountOrdering(t, newRepo(t)) })
	t.Run("TransactionOrdering", func(t *testing.T) { testTransactionOrdering(t, newRepo(t)) })
	t.Run("TransactionFilters", func(t *testing.T) { testTransactionFilters(t, newRepo(t)) })
	t.Run("TransactionUpdateDelete", func(t *testing.T) { testTransactionUpdateDelete(t, newRepo(t)) })
	t.Run("Subscriptions", func(t *testing.T) { testSubscriptions(t, newRepo(t)) })
	t.Run("DateBounds", func(t *testing.T) { testDateBounds(t, newRepo(t)) })
}

// testDateBounds checks that the oldest and newest dates a record may carry
// read back unchanged.
func testDateBounds(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	last := core.MaxDate.Add(-time.Second)

	require.NoError(t, repo.InsertTransaction(ctx, core.Transaction{ID: "old", Title: "Old", Amount: core.Cents(1), Date: core.MinDate, CreatedAt: base}))
	require.NoError(t, repo.InsertTransaction(ctx, core.Transaction{ID: "new", Title: "New", Amount: core.Cents(1), Date: last, CreatedAt: base}))
	require.NoError(t, repo.InsertSubscription(ctx, core.Subscription{ID: "s", Name: "S", Amount: core.Cents(1),
		BillingCycle: core.Annual, NextPaymentDate: last, IsActive: true, CreatedAt: base}))

	old, err := repo.GetTransaction(ctx, "old")
	require.NoError(t, err)
	assert.True(t, old.Date.Equal(core.MinDate), "min date read back as %s", old.Date)

	newest, err := repo.GetTransaction(ctx, "new")
	require.NoError(t, err)
	assert.True(t, newest.Date.Equal(last), "max date read back as %s", newest.Date)

	sub, err := repo.GetSubscription(ctx, "s")
	require.NoError(t, err)
	assert.True(t, sub.NextPaymentDate.Equal(last), "next payment read back as %s", sub.NextPaymentDate)

	txs, err := repo.ListTransactions(ctx, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, transactionIDs(txs))
}

func testAccountCRUD(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	a := core.Account{ID: "acc-1", Name: "Main", Type: "Bank", Balance: core.Cents(100000), Color: "blue", CreatedAt: base}
	require.NoError(t, repo.InsertAccount(ctx, a))

	got, err := repo.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
	assert.Equal(t, int64(100000), got.Balance.Cents)
	assert.True(t, got.CreatedAt.Equal(base))

	got.Balance = core.Cents(-500)
	got.Name = "Checking"
	require.NoError(t, repo.UpdateAccount(ctx, got))
	got, err = repo.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Name)
	assert.Equal(t, int64(-500), got.Balance.Cents)

	err = repo.UpdateAccount(ctx, core.Account{ID: "missing", Name: "x"})
	assert.True(t, core.IsNotFound(err), "update of unknown id: %v", err)

	n, err := repo.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err := repo.DeleteAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, removed, "second delete should be a no-op")

	_, err = repo.GetAccount(ctx, "acc-1")
	assert.True(t, core.IsNotFound(err), "get after delete: %v", err)

	list, err := repo.ListAccounts(ctx, storage.AccountsByCreated)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testAccountOrdering(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	accounts := []core.Account{
		{ID: "a", Name: "A", Balance: core.Cents(500), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Name: "B", Balance: core.Cents(-100), CreatedAt: base},
		{ID: "c", Name: "C", Balance: core.Cents(9000), CreatedAt: base.Add(time.Hour)},
		{ID: "d", Name: "D", Balance: core.Cents(500), CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, a := range accounts {
		require.NoError(t, repo.InsertAccount(ctx, a))
	}

	byCreated, err := repo.ListAccounts(ctx, storage.AccountsByCreated)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, accountIDs(byCreated))

	byBalance, err := repo.ListAccounts(ctx, storage.AccountsByBalance)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "d", "b"}, accountIDs(byBalance))
}

func testTransactionOrdering(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	same := base.Add(24 * time.Hour)
	txs := []core.Transaction{
		{ID: "old", Title: "old", Amount: core.Cents(1), Date: base},
		{ID: "tie-1", Title: "tie 1", Amount: core.Cents(1), Date: same},
		{ID: "new", Title: "new", Amount: core.Cents(1), Date: same.Add(time.Hour)},
		{ID: "tie-2", Title: "tie 2", Amount: core.Cents(1), Date: same},
		{ID: "tie-3", Title: "tie 3", Amount: core.Cents(1), Date: same},
	}
	for i, tx := range txs {
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.InsertTransaction(ctx, tx))
	}

	list, err := repo.ListTransactions(ctx, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "tie-1", "tie-2", "tie-3", "old"}, transactionIDs(list))
}

func testTransactionFilters(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	txs := []core.Transaction{
		{ID: "feb", Title: "feb", Amount: core.Cents(100), AccountName: "Main", Date: time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)},
		{ID: "mar-1", Title: "mar", Amount: core.Cents(200), AccountName: "Main", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "mar-2", Title: "mar cash", Amount: core.Cents(300), AccountName: "Cash", Date: time.Date(2025, 3, 31, 22, 0, 0, 0, time.UTC)},
		{ID: "apr", Title: "apr", Amount: core.Cents(400), AccountName: "Main", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tx := range txs {
		tx.CreatedAt = base
		require.NoError(t, repo.InsertTransaction(ctx, tx))
	}

	main, err := repo.ListTransactions(ctx, storage.TransactionFilter{AccountName: "Main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"apr", "mar-1", "feb"}, transactionIDs(main))

	march, err := repo.ListTransactions(ctx, storage.MonthFilter(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, []string{"mar-2", "mar-1"}, transactionIDs(march))

	f := storage.MonthFilter(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	f.AccountName = "Cash"
	cashMarch, err := repo.ListTransactions(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"mar-2"}, transactionIDs(cashMarch))
}

func testTransactionUpdateDelete(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	tx := core.Transaction{ID: "t1", Title: "Coffee", Amount: core.Cents(450), AccountName: "Cash", Date: base, Notes: "oat", CreatedAt: base}
	require.NoError(t, repo.InsertTransaction(ctx, tx))

	tx.IsIncome = true
	tx.Amount = core.Cents(1000)
	require.NoError(t, repo.UpdateTransaction(ctx, tx))

	got, err := repo.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, got.IsIncome)
	assert.Equal(t, int64(1000), got.Amount.Cents)
	assert.Equal(t, "oat", got.Notes)

	assert.True(t, core.IsNotFound(repo.UpdateTransaction(ctx, core.Transaction{ID: "nope"})))

	removed, err := repo.DeleteTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = repo.GetTransaction(ctx, "t1")
	assert.True(t, core.IsNotFound(err))

	n, err := repo.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testSubscriptions(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	subs := []core.Subscription{
		{ID: "late", Name: "Gym", Amount: core.Cents(3000), BillingCycle: core.Monthly, NextPaymentDate: base.AddDate(0, 0, 20), IsActive: true},
		{ID: "off", Name: "Old", Amount: core.Cents(100), BillingCycle: core.Weekly, NextPaymentDate: base, IsActive: false},
		{ID: "soon", Name: "Music", Amount: core.Cents(999), BillingCycle: core.Monthly, NextPaymentDate: base.AddDate(0, 0, 2), IsActive: true},
	}
	for _, s := range subs {
		s.CreatedAt = base
		require.NoError(t, repo.InsertSubscription(ctx, s))
	}

	active, err := repo.ListSubscriptions(ctx, storage.SubscriptionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"soon", "late"}, subscriptionIDs(active))

	all, err := repo.ListSubscriptions(ctx, storage.SubscriptionFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"off", "soon", "late"}, subscriptionIDs(all))

	got, err := repo.GetSubscription(ctx, "late")
	require.NoError(t, err)
	assert.Equal(t, core.Monthly, got.BillingCycle)

	got.IsActive = false
	require.NoError(t, repo.UpdateSubscription(ctx, got))
	active, err = repo.ListSubscriptions(ctx, storage.SubscriptionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"soon"}, subscriptionIDs(active))

	removed, err := repo.DeleteSubscription(ctx, "soon")
	require.NoError(t, err)
	assert.True(t, removed)
	n, err := repo.CountSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.True(t, core.IsNotFound(repo.UpdateSubscription(ctx, core.Subscription{ID: "soon"})))
}

func accountIDs(in []core.Account) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = a.ID
	}
	return out
}

func transactionIDs(in []core.Transaction) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = t.ID
	}
	return out
}

func subscriptionIDs(in []core.Subscription) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.ID
	}
	return out
}
