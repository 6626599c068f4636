package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Component: ComponentStore, Output: &buf})

	l.Info("hidden")
	l.Warn("shown", FieldKind, "account")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "component=store") || !strings.Contains(out, "kind=account") {
		t.Errorf("missing fields in %q", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Errorf("component logged more than once: %q", out)
	}

	child := l.WithComponent(ComponentNotify)
	if child.Component() != ComponentNotify {
		t.Errorf("Component() = %q", child.Component())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()).Logger == nil {
		t.Fatal("FromContext returned a nil slog logger")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Errorf("request id not attached: %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithRecord("account", "a1").WithOperation(OpCreate).WithAmount(100).WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should not add a field")
	}
	if len(f.ToSlice()) != 8 {
		t.Errorf("ToSlice() len = %d, want 8", len(f.ToSlice()))
	}
}
