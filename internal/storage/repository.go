package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"wallet/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// brings the schema up to date. Any failure here is a startup failure.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One connection: SQLite allows a single writer and the pragmas below
	// are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// readErr maps sql.ErrNoRows to NotFoundError and wraps everything else.
func readErr(op string, kind core.Kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewNotFoundError(kind, id)
	}
	return core.NewPersistenceError(op, err)
}

// Accounts

func accountToRow(a core.Account) AccountRow {
	return AccountRow{
		ID:           a.ID,
		Name:         a.Name,
		Type:         a.Type,
		BalanceCents: a.Balance.Cents,
		Color:        a.Color,
		CreatedAt:    toNanos(a.CreatedAt),
	}
}

func accountFromRow(r AccountRow) core.Account {
	return core.Account{
		ID:        r.ID,
		Name:      r.Name,
		Type:      r.Type,
		Balance:   core.Money{Cents: r.BalanceCents},
		Color:     r.Color,
		CreatedAt: fromNanos(r.CreatedAt),
	}
}

func (r *SQLiteRepository) InsertAccount(ctx context.Context, a core.Account) error {
	if err := r.queries.CreateAccount(ctx, accountToRow(a)); err != nil {
		return core.NewPersistenceError("insert account", err)
	}
	slog.DebugContext(ctx, "Account saved to SQLite", "id", a.ID, "name", a.Name, "balance_cents", a.Balance.Cents)
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, readErr("get account", core.KindAccount, id, err)
	}
	return accountFromRow(row), nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, order AccountOrder) ([]core.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, order == AccountsByBalance)
	if err != nil {
		return nil, core.NewPersistenceError("list accounts", err)
	}
	out := make([]core.Account, len(rows))
	for i, row := range rows {
		out[i] = accountFromRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	n, err := r.queries.UpdateAccount(ctx, accountToRow(a))
	if err != nil {
		return core.NewPersistenceError("update account", err)
	}
	if n == 0 {
		return core.NewNotFoundError(core.KindAccount, a.ID)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.DeleteAccount(ctx, id)
	if err != nil {
		return false, core.NewPersistenceError("delete account", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) CountAccounts(ctx context.Context) (int64, error) {
	n, err := r.queries.CountAccounts(ctx)
	if err != nil {
		return 0, core.NewPersistenceError("count accounts", err)
	}
	return n, nil
}

// Transactions

func transactionToRow(t core.Transaction) TransactionRow {
	return TransactionRow{
		ID:          t.ID,
		Title:       t.Title,
		AmountCents: t.Amount.Cents,
		IsIncome:    t.IsIncome,
		AccountName: t.AccountName,
		Category:    t.Category,
		Date:        toNanos(t.Date),
		Notes:       t.Notes,
		CreatedAt:   toNanos(t.CreatedAt),
	}
}

func transactionFromRow(r TransactionRow) core.Transaction {
	return core.Transaction{
		ID:          r.ID,
		Title:       r.Title,
		Amount:      core.Money{Cents: r.AmountCents},
		IsIncome:    r.IsIncome,
		AccountName: r.AccountName,
		Category:    r.Category,
		Date:        fromNanos(r.Date),
		Notes:       r.Notes,
		CreatedAt:   fromNanos(r.CreatedAt),
	}
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := r.queries.CreateTransaction(ctx, transactionToRow(t)); err != nil {
		return core.NewPersistenceError("insert transaction", err)
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"title", t.Title,
		"amount_cents", t.Amount.Cents,
		"is_income", t.IsIncome,
		"account", t.AccountName)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, readErr("get transaction", core.KindTransaction, id, err)
	}
	return transactionFromRow(row), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	params := ListTransactionsParams{
		From: nullTime(f.From),
		To:   nullTime(f.To),
	}
	if f.AccountName != "" {
		params.AccountName = sql.NullString{String: f.AccountName, Valid: true}
	}
	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, core.NewPersistenceError("list transactions", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = transactionFromRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, transactionToRow(t))
	if err != nil {
		return core.NewPersistenceError("update transaction", err)
	}
	if n == 0 {
		return core.NewNotFoundError(core.KindTransaction, t.ID)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return false, core.NewPersistenceError("delete transaction", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, core.NewPersistenceError("count transactions", err)
	}
	return n, nil
}

// Subscriptions

func subscriptionToRow(s core.Subscription) SubscriptionRow {
	return SubscriptionRow{
		ID:              s.ID,
		Name:            s.Name,
		AmountCents:     s.Amount.Cents,
		BillingCycle:    string(s.BillingCycle),
		NextPaymentDate: toNanos(s.NextPaymentDate),
		IsActive:        s.IsActive,
		Category:        s.Category,
		AccountName:     s.AccountName,
		CreatedAt:       toNanos(s.CreatedAt),
	}
}

func subscriptionFromRow(r SubscriptionRow) core.Subscription {
	return core.Subscription{
		ID:              r.ID,
		Name:            r.Name,
		Amount:          core.Money{Cents: r.AmountCents},
		BillingCycle:    core.BillingCycle(r.BillingCycle),
		NextPaymentDate: fromNanos(r.NextPaymentDate),
		IsActive:        r.IsActive,
		Category:        r.Category,
		AccountName:     r.AccountName,
		CreatedAt:       fromNanos(r.CreatedAt),
	}
}

func (r *SQLiteRepository) InsertSubscription(ctx context.Context, s core.Subscription) error {
	if err := r.queries.CreateSubscription(ctx, subscriptionToRow(s)); err != nil {
		return core.NewPersistenceError("insert subscription", err)
	}
	slog.DebugContext(ctx, "Subscription saved to SQLite",
		"id", s.ID,
		"name", s.Name,
		"amount_cents", s.Amount.Cents,
		"billing_cycle", s.BillingCycle)
	return nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	row, err := r.queries.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, readErr("get subscription", core.KindSubscription, id, err)
	}
	return subscriptionFromRow(row), nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, f SubscriptionFilter) ([]core.Subscription, error) {
	rows, err := r.queries.ListSubscriptions(ctx, f.IncludeInactive)
	if err != nil {
		return nil, core.NewPersistenceError("list subscriptions", err)
	}
	out := make([]core.Subscription, len(rows))
	for i, row := range rows {
		out[i] = subscriptionFromRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) error {
	n, err := r.queries.UpdateSubscription(ctx, subscriptionToRow(s))
	if err != nil {
		return core.NewPersistenceError("update subscription", err)
	}
	if n == 0 {
		return core.NewNotFoundError(core.KindSubscription, s.ID)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.DeleteSubscription(ctx, id)
	if err != nil {
		return false, core.NewPersistenceError("delete subscription", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) CountSubscriptions(ctx context.Context) (int64, error) {
	n, err := r.queries.CountSubscriptions(ctx)
	if err != nil {
		return 0, core.NewPersistenceError("count subscriptions", err)
	}
	return n, nil
}
