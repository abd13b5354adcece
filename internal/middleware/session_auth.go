package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/defile/defile/internal/auth"
	"github.com/defile/defile/internal/model"
	"github.com/defile/defile/internal/session"
)

// CookieName is the admin session cookie.
const CookieName = "defile_session"

// UserResolver re-resolves the session's user on every request, so a
// deleted or renamed account loses access immediately.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SessionAuthConfig holds dependencies for the session middleware.
type SessionAuthConfig struct {
	Logger   *slog.Logger
	Sessions session.Store
	Users    UserResolver
	// LoginPath receives unauthenticated requests, carrying the original
	// target in a "next" query parameter.
	LoginPath string
}

// SessionAuth guards the admin surface. A request with a valid session
// cookie proceeds with the user injected into its context; anything else is
// redirected to the login page.
func SessionAuth(cfg SessionAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := cfg.resolve(r)
			if !ok {
				redirectToLogin(w, r, cfg.LoginPath)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
		})
	}
}

// resolve maps the request's cookie to a user, or reports failure.
func (cfg SessionAuthConfig) resolve(r *http.Request) (*model.User, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || !auth.ValidSessionToken(cookie.Value) {
		return nil, false
	}

	userID, err := cfg.Sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			cfg.Logger.Error("session lookup failed",
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	user, err := cfg.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// redirectToLogin sends the browser to the login page, preserving the
// original target so a successful login lands back where the admin started.
func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath + "?authRequired=true&next=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
