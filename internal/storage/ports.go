package storage

import (
	"context"
	"time"

	"wallet/internal/core"
)

// AccountOrder selects the read ordering of ListAccounts.
type AccountOrder int

const (
	// AccountsByCreated orders by creation time, oldest first.
	AccountsByCreated AccountOrder = iota
	// AccountsByBalance orders by balance, largest first.
	AccountsByBalance
)

// TransactionFilter narrows ListTransactions. Zero values disable a filter.
// From is inclusive, To exclusive.
type TransactionFilter struct {
	AccountName string
	From        time.Time
	To          time.Time
}

// MonthFilter returns a filter matching the calendar month containing t,
// in t's location.
func MonthFilter(t time.Time) TransactionFilter {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return TransactionFilter{From: from, To: from.AddDate(0, 1, 0)}
}

// SubscriptionFilter narrows ListSubscriptions; by default only active
// subscriptions are returned.
type SubscriptionFilter struct {
	IncludeInactive bool
}

// Ports for persistence backends. Every method returns core.NotFoundError
// for unknown ids on Get/Update; Delete reports whether a row was removed.
// Returned records are copies owned by the caller.
type (
	AccountRepository interface {
		InsertAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, id string) (core.Account, error)
		ListAccounts(ctx context.Context, order AccountOrder) ([]core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) error
		DeleteAccount(ctx context.Context, id string) (bool, error)
		CountAccounts(ctx context.Context) (int64, error)
	}

	// TransactionRepository lists by date descending, ties in insertion order.
	TransactionRepository interface {
		InsertTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) (bool, error)
		CountTransactions(ctx context.Context) (int64, error)
	}

	// SubscriptionRepository lists by next payment date ascending.
	SubscriptionRepository interface {
		InsertSubscription(ctx context.Context, s core.Subscription) error
		GetSubscription(ctx context.Context, id string) (core.Subscription, error)
		ListSubscriptions(ctx context.Context, f SubscriptionFilter) ([]core.Subscription, error)
		UpdateSubscription(ctx context.Context, s core.Subscription) error
		DeleteSubscription(ctx context.Context, id string) (bool, error)
		CountSubscriptions(ctx context.Context) (int64, error)
	}

	Repository interface {
		AccountRepository
		TransactionRepository
		SubscriptionRepository
		Close() error
	}
)
