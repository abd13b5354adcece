package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/defile/defile/internal/auth"
	"github.com/defile/defile/internal/metrics"
	"github.com/defile/defile/internal/middleware"
	"github.com/defile/defile/internal/model"
	"github.com/defile/defile/internal/repository"
	"github.com/defile/defile/internal/service"
	"github.com/defile/defile/internal/session"
	"github.com/defile/defile/internal/storage"
	"github.com/defile/defile/internal/upload"
)

// minPasswordLength applies to password changes only; the seeded credential
// is exempt so first login works.
const minPasswordLength = 8

// UserStore is the account persistence the admin console needs.
// *repository.Repository satisfies it.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}

// LoginThrottle clears a client's failed-attempt window after a successful
// login. *session.RedisStore satisfies it.
type LoginThrottle interface {
	ResetLogin(ctx context.Context, ip string)
}

// AdminConfig holds dependencies for the admin console.
type AdminConfig struct {
	Store    *storage.Store
	Ingester *upload.Ingester
	Shares   *service.ShareService
	Users    UserStore
	Sessions session.Store
	// Throttle is optional; nil disables the post-login reset.
	Throttle LoginThrottle
	// Metrics is optional; nil falls back to a no-op recorder.
	Metrics metrics.Recorder
	Logger  *slog.Logger
	// PublicURL prefixes share links shown on the admin page.
	PublicURL string
	// SecureCookie marks the session cookie Secure. Off only for plain-HTTP
	// development setups.
	SecureCookie bool
}

// AdminHandler serves the session-gated admin console: file management, share
// lifecycle, and account maintenance.
type AdminHandler struct {
	cfg AdminConfig
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return &AdminHandler{cfg: cfg}
}

// Page handles GET /admin: the file listing with content hashes and the
// active shares with their public links.
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	files, err := h.cfg.Store.List(r.Context())
	if err != nil {
		h.logError(r, "list files failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	shares, err := h.cfg.Shares.List(r.Context())
	if err != nil {
		h.logError(r, "list shares failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := adminData{
		Username: user.Username,
		Error:    r.URL.Query().Get("error"),
		Notice:   r.URL.Query().Get("notice"),
	}
	for _, f := range files {
		data.Files = append(data.Files, adminFileView{
			Name:    f.Name,
			Size:    humanSize(f.Size),
			SHA256:  f.SHA256,
			ModTime: f.ModTime.UTC().Format("2006-01-02 15:04"),
		})
	}
	for _, s := range shares {
		data.Shares = append(data.Shares, adminShareView{
			UID:       s.UID.String(),
			Filename:  s.Filename,
			Link:      h.cfg.PublicURL + s.DownloadPath(),
			CreatedAt: s.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	render(w, h.cfg.Logger, http.StatusOK, adminTpl, data)
}

// LoginPage handles GET /admin/login.
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	render(w, h.cfg.Logger, http.StatusOK, loginTpl, loginData{
		AuthRequired: q.Get("authRequired") == "true",
		Next:         sanitizeNext(q.Get("next")),
	})
}

// Login handles POST /admin/login. On success it mints a session token,
// stores it server-side, and redirects to the (sanitized) original target.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := sanitizeNext(r.PostFormValue("next"))

	user, err := h.cfg.Users.GetUserByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			h.logError(r, "login lookup failed", err)
		}
		h.loginFailed(w, r, next)
		return
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		if err != nil {
			h.logError(r, "password verification failed", err)
		}
		h.loginFailed(w, r, next)
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		h.logError(r, "session token generation failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.cfg.Sessions.Create(r.Context(), token, user.ID); err != nil {
		h.logError(r, "session creation failed", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.cfg.Throttle != nil {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			h.cfg.Throttle.ResetLogin(r.Context(), host)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.cfg.Metrics.IncLoginSucceeded()
	h.cfg.Logger.Info("admin logged in",
		slog.String("request_id", requestID(r)),
		slog.String("username", user.Username),
	)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// loginFailed renders the login page again with a uniform error: it never
// distinguishes a wrong password from an unknown account.
func (h *AdminHandler) loginFailed(w http.ResponseWriter, r *http.Request, next string) {
	h.cfg.Metrics.IncLoginRejected()
	h.cfg.Logger.Warn("login rejected", slog.String("request_id", requestID(r)))
	render(w, h.cfg.Logger, http.StatusUnauthorized, loginTpl, loginData{
		Error: "Invalid username or password.",
		Next:  next,
	})
}

// Logout handles GET /admin/logout: destroys the server-side session and
// clears the cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.CookieName); err == nil && auth.ValidSessionToken(cookie.Value) {
		if err := h.cfg.Sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logError(r, "session destroy failed", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// CreateShare handles POST /admin/createShare.
func (h *AdminHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectAdmin(w, r, "error", "malformed request")
		return
	}
	filename := r.PostFormValue("filename")

	if !h.cfg.Store.Exists(filename) {
		h.redirectAdmin(w, r, "error", "no such file: "+filename)
		return
	}

	share, err := h.cfg.Shares.Issue(r.Context(), filename)
	if err != nil {
		h.logError(r, "share issue failed", err)
		h.redirectAdmin(w, r, "error", "could not create share")
		return
	}

	h.cfg.Metrics.IncShareIssued()
	h.cfg.Logger.Info("share issued",
		slog.String("request_id", requestID(r)),
		slog.String("filename", filename),
		slog.String("share_id", share.ID),
	)
	h.redirectAdmin(w, r, "notice", "share created for "+filename)
}

// RevokeShare handles POST /admin/revokeShare. Revoking an already-consumed
// share succeeds quietly.
func (h *AdminHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectAdmin(w, r, "error", "malformed request")
		return
	}

	uid, err := uuid.Parse(r.PostFormValue("uid"))
	if err != nil {
		h.redirectAdmin(w, r, "error", "invalid share token")
		return
	}

	if err := h.cfg.Shares.Revoke(r.Context(), uid); err != nil {
		h.logError(r, "share revoke failed", err)
		h.redirectAdmin(w, r, "error", "could not revoke share")
		return
	}

	h.cfg.Metrics.IncShareRevoked()
	h.cfg.Logger.Info("share revoked", slog.String("request_id", requestID(r)))
	h.redirectAdmin(w, r, "notice", "share revoked")
}

// DeleteFile handles POST /admin/deleteFile. Shares are revoked before the
// file goes, so no interleaved download can consume a share whose file is
// already gone.
func (h *AdminHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectAdmin(w, r, "error", "malformed request")
		return
	}
	filename := r.PostFormValue("filename")

	if _, err := storage.SanitizeFilename(filename); err != nil {
		h.redirectAdmin(w, r, "error", "invalid filename")
		return
	}

	if err := h.cfg.Shares.RevokeAllForFile(r.Context(), filename); err != nil {
		h.logError(r, "share revocation for file failed", err)
		h.redirectAdmin(w, r, "error", "could not revoke shares for "+filename)
		return
	}
	if err := h.cfg.Store.Remove(filename); err != nil {
		h.logError(r, "file removal failed", err)
		h.redirectAdmin(w, r, "error", "could not delete "+filename)
		return
	}

	h.cfg.Metrics.IncFileDeleted()
	h.cfg.Logger.Info("file deleted",
		slog.String("request_id", requestID(r)),
		slog.String("filename", filename),
	)
	h.redirectAdmin(w, r, "notice", "deleted "+filename)
}

// ChangePassword handles POST /admin/changePassword for the logged-in user.
func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.redirectAdmin(w, r, "error", "malformed request")
		return
	}
	password := r.PostFormValue("password")
	if len(password) < minPasswordLength {
		h.redirectAdmin(w, r, "error",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.logError(r, "password hashing failed", err)
		h.redirectAdmin(w, r, "error", "could not update password")
		return
	}
	if err := h.cfg.Users.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		h.logError(r, "password update failed", err)
		h.redirectAdmin(w, r, "error", "could not update password")
		return
	}

	h.cfg.Logger.Info("password changed",
		slog.String("request_id", requestID(r)),
		slog.String("username", user.Username),
	)
	h.redirectAdmin(w, r, "notice", "password updated")
}

// Upload handles POST /admin/uploadFile: a streamed multipart body of one or
// more files.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	results, err := h.cfg.Ingester.Ingest(r.Context(), r)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrNotMultipart):
			h.redirectAdmin(w, r, "error", "upload must be multipart/form-data")
		case errors.Is(err, upload.ErrNoFile):
			h.redirectAdmin(w, r, "error", "no file selected")
		case errors.Is(err, upload.ErrTooLarge):
			h.redirectAdmin(w, r, "error", "upload exceeds the size limit")
		case errors.Is(err, storage.ErrInvalidFilename):
			h.redirectAdmin(w, r, "error", "filename not allowed")
		default:
			h.logError(r, "upload failed", err)
			h.redirectAdmin(w, r, "error", "upload failed")
		}
		return
	}

	var total int64
	for _, res := range results {
		total += res.Size
		h.cfg.Metrics.IncFileUploaded()
	}
	h.cfg.Logger.Info("files uploaded",
		slog.String("request_id", requestID(r)),
		slog.Int("count", len(results)),
		slog.Int64("bytes", total),
	)
	h.redirectAdmin(w, r, "notice", fmt.Sprintf("uploaded %d file(s)", len(results)))
}

// redirectAdmin sends the browser back to the admin page with a one-shot
// banner message.
func (h *AdminHandler) redirectAdmin(w http.ResponseWriter, r *http.Request, kind, message string) {
	q := url.Values{kind: []string{message}}
	http.Redirect(w, r, "/admin?"+q.Encode(), http.StatusSeeOther)
}

func (h *AdminHandler) logError(r *http.Request, msg string, err error) {
	h.cfg.Logger.Error(msg,
		slog.String("request_id", requestID(r)),
		slog.String("error", err.Error()),
	)
}
