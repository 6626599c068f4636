package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSuspicious(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		method string
		target string
		want   bool
	}{
		{"plain api call", http.MethodGet, "/accounts", false},
		{"query filter", http.MethodGet, "/transactions?account=Main&month=2024-03", false},
		{"path traversal", http.MethodGet, "/accounts/../../etc/passwd", true},
		{"dotenv probe", http.MethodGet, "/.env", true},
		{"sql in query", http.MethodGet, "/transactions?account=x'%20union%20select", true},
		{"trace method", "TRACE", "/accounts", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			assert.Equal(t, tt.want, d.IsSuspicious(r))
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.2:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.2", d.ExtractClientIP(r), "untrusted peers cannot spoof")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", d.ExtractClientIP(r))

	require.NoError(t, d.AddTrustedProxy("198.51.100.0/24"))
	assert.Error(t, d.AddTrustedProxy("not-a-cidr"))
}

func TestMiddlewareRejectsProbes(t *testing.T) {
	d := NewDetector()
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	m := d.GetMetrics()
	assert.Equal(t, int64(1), m.SuspiciousRequests)
	assert.Equal(t, int64(1), m.RejectedRequests)
}

func TestHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Headers(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
