package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeLimiter struct {
	allow   bool
	seenIPs []string
}

func (f *fakeLimiter) AllowLogin(_ context.Context, ip string, _ int) bool {
	f.seenIPs = append(f.seenIPs, ip)
	return f.allow
}

func TestLoginRateLimit_Allows(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allow: true}
	handler := LoginRateLimit(RateLimitConfig{
		Logger:      discardLogger(),
		Limiter:     limiter,
		Enabled:     true,
		MaxAttempts: 10,
	})(okHandler())

	req := httptest.NewRequest("POST", "/admin/login", nil)
	req.RemoteAddr = "203.0.113.9:55000"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(limiter.seenIPs) != 1 || limiter.seenIPs[0] != "203.0.113.9" {
		t.Errorf("limiter should see the peer IP without port, got %v", limiter.seenIPs)
	}
}

func TestLoginRateLimit_Throttles(t *testing.T) {
	t.Parallel()

	handler := LoginRateLimit(RateLimitConfig{
		Logger:      discardLogger(),
		Limiter:     &fakeLimiter{allow: false},
		Enabled:     true,
		MaxAttempts: 10,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for throttled request")
	}))

	req := httptest.NewRequest("POST", "/admin/login", nil)
	req.RemoteAddr = "203.0.113.9:55000"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestLoginRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allow: false}
	handler := LoginRateLimit(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: limiter,
		Enabled: false,
	})(okHandler())

	req := httptest.NewRequest("POST", "/admin/login", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("disabled limiter must pass requests through, got %d", rec.Code)
	}
	if len(limiter.seenIPs) != 0 {
		t.Error("disabled limiter must not be consulted")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"10.0.0.5:41000", "10.0.0.5"},
		{"[::1]:41000", "::1"},
		{"no-port", "no-port"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}
