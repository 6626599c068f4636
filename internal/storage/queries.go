package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Row models. Timestamps are unix nanoseconds.
type (
	AccountRow struct {
		ID           string
		Name         string
		Type         string
		BalanceCents int64
		Color        string
		CreatedAt    int64
	}

	TransactionRow struct {
		ID          string
		Title       string
		AmountCents int64
		IsIncome    bool
		AccountName string
		Category    string
		Date        int64
		Notes       string
		CreatedAt   int64
	}

	SubscriptionRow struct {
		ID              string
		Name            string
		AmountCents     int64
		BillingCycle    string
		NextPaymentDate int64
		IsActive        bool
		Category        string
		AccountName     string
		CreatedAt       int64
	}
)

const accountColumns = `id, name, type, balance_cents, color, created_at`

func scanAccount(row interface{ Scan(...any) error }) (AccountRow, error) {
	var a AccountRow
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.BalanceCents, &a.Color, &a.CreatedAt)
	return a, err
}

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateAccount(ctx context.Context, a AccountRow) error {
	_, err := q.db.ExecContext(ctx, createAccount, a.ID, a.Name, a.Type, a.BalanceCents, a.Color, a.CreatedAt)
	return err
}

const getAccount = `-- name: GetAccount :one
SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccount(ctx context.Context, id string) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccount, id))
}

const listAccountsByCreated = `-- name: ListAccountsByCreated :many
SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC, seq ASC`

const listAccountsByBalance = `-- name: ListAccountsByBalance :many
SELECT ` + accountColumns + ` FROM accounts ORDER BY balance_cents DESC, seq ASC`

func (q *Queries) ListAccounts(ctx context.Context, byBalance bool) ([]AccountRow, error) {
	query := listAccountsByCreated
	if byBalance {
		query = listAccountsByBalance
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AccountRow
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const updateAccount = `-- name: UpdateAccount :execrows
UPDATE accounts SET name = ?, type = ?, balance_cents = ?, color = ? WHERE id = ?`

func (q *Queries) UpdateAccount(ctx context.Context, a AccountRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccount, a.Name, a.Type, a.BalanceCents, a.Color, a.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAccount = `-- name: DeleteAccount :execrows
DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAccount, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countAccounts = `-- name: CountAccounts :one
SELECT COUNT(*) FROM accounts`

func (q *Queries) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countAccounts).Scan(&n)
	return n, err
}

const transactionColumns = `id, title, amount_cents, is_income, account_name, category, date, notes, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(&t.ID, &t.Title, &t.AmountCents, &t.IsIncome, &t.AccountName, &t.Category, &t.Date, &t.Notes, &t.CreatedAt)
	return t, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (` + transactionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, t TransactionRow) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		t.ID, t.Title, t.AmountCents, t.IsIncome, t.AccountName, t.Category, t.Date, t.Notes, t.CreatedAt)
	return err
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

// NULL parameters disable the matching predicate.
const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE (?1 IS NULL OR account_name = ?1)
  AND (?2 IS NULL OR date >= ?2)
  AND (?3 IS NULL OR date < ?3)
ORDER BY date DESC, seq ASC`

type ListTransactionsParams struct {
	AccountName sql.NullString
	From        sql.NullInt64
	To          sql.NullInt64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.AccountName, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET title = ?, amount_cents = ?, is_income = ?, account_name = ?, category = ?, date = ?, notes = ?
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, t TransactionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		t.Title, t.AmountCents, t.IsIncome, t.AccountName, t.Category, t.Date, t.Notes, t.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactions).Scan(&n)
	return n, err
}

const subscriptionColumns = `id, name, amount_cents, billing_cycle, next_payment_date, is_active, category, account_name, created_at`

func scanSubscription(row interface{ Scan(...any) error }) (SubscriptionRow, error) {
	var s SubscriptionRow
	err := row.Scan(&s.ID, &s.Name, &s.AmountCents, &s.BillingCycle, &s.NextPaymentDate, &s.IsActive, &s.Category, &s.AccountName, &s.CreatedAt)
	return s, err
}

const createSubscription = `-- name: CreateSubscription :exec
INSERT INTO subscriptions (` + subscriptionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateSubscription(ctx context.Context, s SubscriptionRow) error {
	_, err := q.db.ExecContext(ctx, createSubscription,
		s.ID, s.Name, s.AmountCents, s.BillingCycle, s.NextPaymentDate, s.IsActive, s.Category, s.AccountName, s.CreatedAt)
	return err
}

const getSubscription = `-- name: GetSubscription :one
SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`

func (q *Queries) GetSubscription(ctx context.Context, id string) (SubscriptionRow, error) {
	return scanSubscription(q.db.QueryRowContext(ctx, getSubscription, id))
}

const listSubscriptions = `-- name: ListSubscriptions :many
SELECT ` + subscriptionColumns + ` FROM subscriptions
WHERE (?1 OR is_active = 1)
ORDER BY next_payment_date ASC, seq ASC`

func (q *Queries) ListSubscriptions(ctx context.Context, includeInactive bool) ([]SubscriptionRow, error) {
	rows, err := q.db.QueryContext(ctx, listSubscriptions, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubscriptionRow
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const updateSubscription = `-- name: UpdateSubscription :execrows
UPDATE subscriptions
SET name = ?, amount_cents = ?, billing_cycle = ?, next_payment_date = ?, is_active = ?, category = ?, account_name = ?
WHERE id = ?`

func (q *Queries) UpdateSubscription(ctx context.Context, s SubscriptionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSubscription,
		s.Name, s.AmountCents, s.BillingCycle, s.NextPaymentDate, s.IsActive, s.Category, s.AccountName, s.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteSubscription = `-- name: DeleteSubscription :execrows
DELETE FROM subscriptions WHERE id = ?`

func (q *Queries) DeleteSubscription(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSubscription, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countSubscriptions = `-- name: CountSubscriptions :one
SELECT COUNT(*) FROM subscriptions`

func (q *Queries) CountSubscriptions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSubscriptions).Scan(&n)
	return n, err
}
