package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowWithinWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "clients are limited independently")
	assert.Equal(t, int64(1), rl.Hits())

	*now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"), "a new window resets the count")
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, now := newTestLimiter(t, 10)
	rl.Allow("a")
	*now = now.Add(5 * time.Minute)
	rl.Allow("b")
	*now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "client" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	rl.Stop()
	assert.Equal(t, DefaultConfig().RequestsPerMinute, rl.requestsPerMinute)
}
