package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/dto"
	"wallet/internal/log"
	"wallet/internal/services"
	"wallet/internal/storage/memory"
)

var testNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	logger := log.New(log.Config{Output: io.Discard})
	clock := func() time.Time { return testNow }
	n := 0
	store := services.NewRecordStore(memory.New(),
		services.WithClock(clock),
		services.WithLogger(logger),
		services.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	s := NewServer(":0", store, append([]Option{WithLogger(logger), WithClock(clock)}, opts...)...)
	t.Cleanup(func() {
		s.closeViews()
		store.Close()
	})
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestAccountCRUD(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/accounts", map[string]any{"name": "Checking", "type": "Bank", "balance": "1200.50"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.Account](t, w)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "1200.50", created.Balance)
	assert.Equal(t, int64(120050), created.BalanceCents)

	w = do(t, s, http.MethodGet, "/accounts/id-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Checking", decode[dto.Account](t, w).Name)

	w = do(t, s, http.MethodPatch, "/accounts/id-1", map[string]any{"balance": "-20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.Account](t, w)
	assert.Equal(t, "-20.00", updated.Balance)
	assert.Equal(t, "Checking", updated.Name, "unpatched fields are kept")

	do(t, s, http.MethodPost, "/accounts", map[string]any{"name": "Savings", "type": "Bank", "balance": "500"})
	w = do(t, s, http.MethodGet, "/accounts?order=balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.AccountList](t, w)
	require.Len(t, list.Accounts, 2)
	assert.Equal(t, "Savings", list.Accounts[0].Name)
	assert.Equal(t, "480.00", list.TotalBalance)

	w = do(t, s, http.MethodDelete, "/accounts/id-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodDelete, "/accounts/id-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "deleting twice is not an error")

	w = do(t, s, http.MethodGet, "/accounts/id-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Code)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"empty account name", http.MethodPost, "/accounts", map[string]any{"name": "  "}, http.StatusBadRequest, "invalid_input"},
		{"bad balance", http.MethodPost, "/accounts", map[string]any{"name": "A", "balance": "lots"}, http.StatusBadRequest, "invalid_input"},
		{"unknown field", http.MethodPost, "/accounts", map[string]any{"name": "A", "owner": "me"}, http.StatusBadRequest, "invalid_input"},
		{"malformed json", http.MethodPost, "/transactions", "{", http.StatusBadRequest, "invalid_input"},
		{"empty body", http.MethodPost, "/transactions", "", http.StatusBadRequest, "invalid_input"},
		{"negative amount", http.MethodPost, "/transactions", map[string]any{"title": "x", "amount": "-3"}, http.StatusBadRequest, "invalid_input"},
		{"bad cycle", http.MethodPost, "/subscriptions", map[string]any{"name": "x", "amount": "3", "billing_cycle": "daily", "next_payment_date": "2025-04-01"}, http.StatusBadRequest, "invalid_input"},
		{"bad order", http.MethodGet, "/accounts?order=name", nil, http.StatusBadRequest, "invalid_input"},
		{"bad month", http.MethodGet, "/transactions?month=march", nil, http.StatusBadRequest, "invalid_input"},
		{"bad include_inactive", http.MethodGet, "/subscriptions?include_inactive=maybe", nil, http.StatusBadRequest, "invalid_input"},
		{"activity without account", http.MethodGet, "/activity", nil, http.StatusBadRequest, "invalid_input"},
		{"unknown transaction", http.MethodGet, "/transactions/nope", nil, http.StatusNotFound, "not_found"},
		{"patch unknown subscription", http.MethodPatch, "/subscriptions/nope", map[string]any{"name": "x"}, http.StatusNotFound, "not_found"},
		{"unknown route", http.MethodGet, "/budgets", nil, http.StatusNotFound, "not_found"},
		{"wrong method", http.MethodPut, "/accounts/id-1", map[string]any{}, http.StatusMethodNotAllowed, "method_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestTransactionsListAndActivity(t *testing.T) {
	s := newTestServer(t)

	for _, tx := range []map[string]any{
		{"title": "Salary", "amount": "2000", "is_income": true, "account_name": "Checking", "date": "2025-03-01"},
		{"title": "Rent", "amount": "800", "account_name": "Checking", "date": "2025-03-02"},
		{"title": "Coffee", "amount": "3,50", "account_name": "Cash", "date": "2025-03-03"},
		{"title": "Books", "amount": "40", "account_name": "Checking", "date": "2025-02-20"},
	} {
		w := do(t, s, http.MethodPost, "/transactions", tx)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := do(t, s, http.MethodGet, "/transactions?month=2025-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	march := decode[dto.TransactionList](t, w)
	require.Equal(t, 3, march.Count)
	assert.Equal(t, "Coffee", march.Transactions[0].Title, "newest first")
	assert.Equal(t, "2025-03-03", march.Transactions[0].Date)

	w = do(t, s, http.MethodGet, "/activity?account=Checking", nil)
	require.Equal(t, http.StatusOK, w.Code)
	activity := decode[dto.TransactionList](t, w)
	assert.Equal(t, "Checking", activity.AccountName)
	assert.Equal(t, 3, activity.Count)
	assert.Equal(t, "2000.00", activity.Income)
	assert.Equal(t, "840.00", activity.Expenses)
	require.Len(t, activity.Months, 2)
	assert.Equal(t, "March 2025", activity.Months[0].Label)
	assert.Equal(t, 2, activity.Months[0].Count)

	w = do(t, s, http.MethodGet, "/activity?account=Nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[dto.TransactionList](t, w)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Transactions)

	w = do(t, s, http.MethodPatch, "/transactions/id-2", map[string]any{"amount": "850", "notes": "raised"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "850.00", decode[dto.Transaction](t, w).Amount)

	w = do(t, s, http.MethodDelete, "/transactions/id-2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, "/transactions?account=Checking", nil)
	assert.Equal(t, 2, decode[dto.TransactionList](t, w).Count)
}

func TestSummaryReflectsWrites(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[dto.Summary](t, w).AccountCount)

	do(t, s, http.MethodPost, "/accounts", map[string]any{"name": "Checking", "type": "Bank", "balance": "1000"})
	do(t, s, http.MethodPost, "/accounts", map[string]any{"name": "Wallet", "type": "Cash", "balance": "50.25"})
	do(t, s, http.MethodPost, "/transactions", map[string]any{"title": "Lunch", "amount": "12", "account_name": "Wallet", "date": "2025-03-10"})
	do(t, s, http.MethodPost, "/subscriptions", map[string]any{"name": "Music", "amount": "9.99", "billing_cycle": "monthly", "next_payment_date": "2025-04-01"})
	do(t, s, http.MethodPost, "/subscriptions", map[string]any{"name": "Paused", "amount": "100", "billing_cycle": "monthly", "next_payment_date": "2025-04-01", "is_active": false})

	w = do(t, s, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[dto.Summary](t, w)
	assert.Equal(t, 2, sum.AccountCount)
	assert.Equal(t, "1050.25", sum.TotalBalance)
	assert.Equal(t, int64(105025), sum.TotalBalanceCents)
	assert.Equal(t, 1, sum.TransactionsThisMonth)
	require.Len(t, sum.Recent, 1)
	assert.Equal(t, "9.99", sum.SubscriptionsMonthly)
	assert.Equal(t, "119.88", sum.SubscriptionsYearly)
	require.Len(t, sum.BalanceByType, 2)
}

func TestSubscriptionsAndProcessDue(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/subscriptions", map[string]any{
		"name": "Cloud", "amount": "5", "billing_cycle": "monthly",
		"next_payment_date": "2025-01-15", "account_name": "Checking",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[dto.Subscription](t, w)
	assert.True(t, sub.IsActive, "subscriptions start active")
	assert.Equal(t, "5.00", sub.MonthlyEquivalent)

	w = do(t, s, http.MethodPost, "/subscriptions", map[string]any{
		"name": "Later", "amount": "10", "billing_cycle": "annual", "next_payment_date": "2025-12-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, http.MethodPost, "/subscriptions/process-due", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Charged []struct {
			SubscriptionID string `json:"subscription_id"`
			Charges        int    `json:"charges"`
			NextPayment    string `json:"next_payment_date"`
		} `json:"charged"`
		TransactionsCreated int `json:"transactions_created"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 3, res.TransactionsCreated, "January, February and March are due")
	require.Len(t, res.Charged, 1)
	assert.Equal(t, sub.ID, res.Charged[0].SubscriptionID)
	assert.Equal(t, "2025-04-15", res.Charged[0].NextPayment)

	w = do(t, s, http.MethodGet, "/transactions?account=Checking", nil)
	assert.Equal(t, 3, decode[dto.TransactionList](t, w).Count)

	w = do(t, s, http.MethodPost, "/subscriptions/process-due", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 0, res.TransactionsCreated, "a second run charges nothing")

	w = do(t, s, http.MethodPatch, "/subscriptions/"+sub.ID, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodGet, "/subscriptions", nil)
	assert.Len(t, decode[dto.SubscriptionList](t, w).Subscriptions, 1)
	w = do(t, s, http.MethodGet, "/subscriptions?include_inactive=true", nil)
	assert.Len(t, decode[dto.SubscriptionList](t, w).Subscriptions, 2)

	w = do(t, s, http.MethodDelete, "/subscriptions/"+sub.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodGet, "/subscriptions/"+sub.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t, WithRateLimit(100))

	w := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	checks, ok := body["checks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, checks, "store")
	assert.Contains(t, checks, "rate_limiter")

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-from-client")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-from-client", rec.Header().Get("X-Request-ID"))
}

func TestRateLimitRejects(t *testing.T) {
	s := newTestServer(t, WithRateLimit(2))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", nil).Code)
	}
	w := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSuspiciousRequestRejected(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/wp-admin/install.php", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
