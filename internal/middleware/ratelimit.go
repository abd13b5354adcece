package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
)

// LoginLimiter throttles credential submissions per client IP.
// *session.RedisStore satisfies it.
type LoginLimiter interface {
	AllowLogin(ctx context.Context, ip string, maxAttempts int) bool
}

// RateLimitConfig holds configuration for login throttling.
type RateLimitConfig struct {
	Logger      *slog.Logger
	Limiter     LoginLimiter
	Enabled     bool
	MaxAttempts int
}

// LoginRateLimit slows down credential stuffing against the login endpoint.
// The limiter fails open, so losing Redis never locks the admin out.
func LoginRateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !cfg.Limiter.AllowLogin(r.Context(), ip, cfg.MaxAttempts) {
				cfg.Logger.Warn("login attempts throttled",
					slog.String("request_id", GetRequestID(r.Context())),
				)
				http.Error(w, "too many login attempts, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the transport-reported peer address without its port.
// Forwarded headers are deliberately ignored here: they are client-supplied
// and would let an attacker rotate limiter buckets at will.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
