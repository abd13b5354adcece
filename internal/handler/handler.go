// Package handler provides the HTTP surface: the public landing and download
// pages and the session-gated admin console.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/defile/defile/internal/middleware"
)

// render executes a template into a buffer before touching the response, so a
// template error becomes a clean 500 instead of a torn page.
func render(w http.ResponseWriter, logger *slog.Logger, status int, tpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		logger.Error("template render failed",
			slog.String("template", tpl.Name()),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound renders a minimal 404 page.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, "<!doctype html><title>Not Found</title><h1>404 &mdash; not found</h1>")
}

// MethodNotAllowed renders a minimal 405 page.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	fmt.Fprint(w, "<!doctype html><title>Method Not Allowed</title><h1>405 &mdash; method not allowed</h1>")
}

// sanitizeNext validates a post-login redirect target. Only local absolute
// paths pass; anything that could leave the origin falls back to the admin
// page.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/admin"
	}
	// "//host" and "/\host" are scheme-relative escapes in browsers.
	if strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/admin"
	}
	return next
}

// humanSize formats a byte count for the admin listing.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// requestID is shorthand for the middleware accessor used in log lines.
func requestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
