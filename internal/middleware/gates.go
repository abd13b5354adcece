package middleware

import (
	"log/slog"
	"net/http"

	"github.com/defile/defile/internal/ipfilter"
)

// OriginGate rejects requests whose source address is outside the allowed
// ranges. Applied to the admin subtree only; downloads stay public.
func OriginGate(gate *ipfilter.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Admit(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VhostGate rejects requests not addressed to the expected virtual host.
func VhostGate(gate *ipfilter.VhostGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Admit(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GateAudit adapts a logger into an ipfilter audit hook. Decisions are
// debug-level: client addresses should not reach info logs in production.
func GateAudit(logger *slog.Logger, gateName string) ipfilter.AuditFunc {
	return func(admitted bool, source, detail string) {
		logger.Debug("gate decision",
			slog.String("gate", gateName),
			slog.Bool("admitted", admitted),
			slog.String("source", source),
			slog.String("value", detail),
		)
	}
}
