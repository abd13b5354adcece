// Package main is the entrypoint for the Defile file-sharing portal.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/defile/defile/internal/auth"
	"github.com/defile/defile/internal/config"
	"github.com/defile/defile/internal/handler"
	"github.com/defile/defile/internal/ipfilter"
	"github.com/defile/defile/internal/metrics"
	"github.com/defile/defile/internal/middleware"
	"github.com/defile/defile/internal/repository"
	"github.com/defile/defile/internal/server"
	"github.com/defile/defile/internal/service"
	"github.com/defile/defile/internal/session"
	"github.com/defile/defile/internal/storage"
	"github.com/defile/defile/internal/upload"
)

// Default credential seeded on an empty users table. Changing the password
// through the admin console is the expected first action.
const (
	seedUsername = "admin"
	seedPassword = "admin"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("migration failed", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}

	seedHash, err := auth.HashPassword(seedPassword)
	if err != nil {
		logger.Error("failed to hash seed password", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := repo.SeedAdminUser(ctx, seedUsername, seedHash); err != nil {
		logger.Error("failed to seed admin user", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}

	sessions, err := session.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	store, err := storage.New(cfg.StorageRoot)
	if err != nil {
		logger.Error("failed to open storage root", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("storage ready", slog.String("root", store.Root()))

	recorder := metrics.NewInMemory()
	shareService := service.NewShareService(repo)

	publicHandler := handler.NewPublicHandler(shareService, store, recorder, logger)
	adminHandler := handler.NewAdminHandler(handler.AdminConfig{
		Store:        store,
		Ingester:     upload.New(store, cfg.MaxUploadBytes),
		Shares:       shareService,
		Users:        repo,
		Sessions:     sessions,
		Throttle:     sessions,
		Metrics:      recorder,
		Logger:       logger,
		PublicURL:    cfg.BasePublicURL(),
		SecureCookie: cfg.HasTLS,
	})

	router := setupRouter(publicHandler, adminHandler, repo, sessions, cfg, logger)

	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("session store", func(context.Context) error { return sessions.Close() })
	srv.OnShutdown("database", func(context.Context) error { repo.Close(); return nil })

	logger.Info("starting server",
		"port", cfg.AppPort,
		"public_url", cfg.BasePublicURL(),
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router. The admin subtree sits behind the
// vhost and origin gates (when configured) and the session check; the landing
// and download routes stay public.
func setupRouter(
	publicHandler *handler.PublicHandler,
	adminHandler *handler.AdminHandler,
	repo *repository.Repository,
	sessions *session.RedisStore,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// RemoteAddr is left untouched: the origin gate decides for itself which
	// of the transport address and the forwarded headers to trust.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security)

	r.Get("/", publicHandler.Landing)
	r.Get("/download/{uid}", publicHandler.Download)

	sessionCfg := middleware.SessionAuthConfig{
		Logger:    logger,
		Sessions:  sessions,
		Users:     repo,
		LoginPath: "/admin/login",
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:      logger,
		Limiter:     sessions,
		Enabled:     cfg.LoginRateLimitEnabled,
		MaxAttempts: cfg.LoginRateLimitMax,
	}

	r.Route("/admin", func(r chi.Router) {
		if cfg.AdminVhost != "" {
			r.Use(middleware.VhostGate(&ipfilter.VhostGate{
				Host:  cfg.AdminVhost,
				Audit: middleware.GateAudit(logger, "vhost"),
			}))
		}
		if cfg.OriginGateEnabled() {
			ranges, err := cfg.AdminRanges()
			if err != nil {
				// Load() already validated the list; reaching this means the
				// config was mutated after startup.
				panic(err)
			}
			r.Use(middleware.OriginGate(&ipfilter.Gate{
				UseRemoteAddr: cfg.AdminUseRemoteAddr,
				UseForwarded:  cfg.AdminUseForwarded,
				Ranges:        ranges,
				Audit:         middleware.GateAudit(logger, "origin"),
			}))
		}

		r.Get("/login", adminHandler.LoginPage)
		r.With(middleware.LoginRateLimit(rateLimitCfg)).Post("/login", adminHandler.Login)
		r.Get("/logout", adminHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessionCfg))
			r.Get("/", adminHandler.Page)
			r.Post("/createShare", adminHandler.CreateShare)
			r.Post("/revokeShare", adminHandler.RevokeShare)
			r.Post("/deleteFile", adminHandler.DeleteFile)
			r.Post("/changePassword", adminHandler.ChangePassword)
			r.Post("/uploadFile", adminHandler.Upload)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
