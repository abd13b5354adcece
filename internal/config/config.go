// Package config provides application configuration management.
// Configuration is loaded once at startup from environment variables and
// passed explicitly into components; nothing reads the environment later.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"github.com/defile/defile/internal/ipfilter"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production"`
	AppPort int    `env:"APP_PORT" envDefault:"8080" validate:"gt=0,lte=65535"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Session store (Redis)
	RedisURL string `env:"REDIS_URL,required" validate:"required"`

	// Base URL used in rendered share links (e.g. https://files.example.com)
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080" validate:"url"`

	// Private storage root holding files eligible for sharing.
	StorageRoot string `env:"STORAGE_ROOT" envDefault:"./data/files" validate:"required"`

	// Governs the Secure flag on the session cookie.
	HasTLS bool `env:"HAS_TLS" envDefault:"false"`

	// Admin surface gating. AdminVhost restricts the admin routes to one
	// virtual host behind a reverse proxy; empty disables the check.
	// AdminAllowedCIDRs is a comma-separated IPv4 CIDR list; empty disables
	// origin filtering.
	AdminVhost         string `env:"ADMIN_VHOST" envDefault:""`
	AdminAllowedCIDRs  string `env:"ADMIN_ALLOWED_CIDRS" envDefault:""`
	AdminUseRemoteAddr bool   `env:"ADMIN_USE_REMOTE_ADDR" envDefault:"true"`
	AdminUseForwarded  bool   `env:"ADMIN_USE_FORWARDED" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	// Server timeouts. Write timeout must leave room for large streamed
	// downloads and uploads.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10m" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10m" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"1073741824" validate:"gt=0"`

	// Login throttling (per client IP, fixed window)
	LoginRateLimitEnabled bool `env:"LOGIN_RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRateLimitMax     int  `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"10" validate:"gt=0"`
}

var validate = validator.New()

// Load parses environment variables into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// CIDR syntax cannot be expressed as a struct tag; check it up front so
	// a typo fails startup instead of silently locking the admin out.
	if _, err := cfg.AdminRanges(); err != nil {
		return nil, fmt.Errorf("invalid config: ADMIN_ALLOWED_CIDRS: %w", err)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AdminRanges parses AdminAllowedCIDRs into CIDR ranges.
func (c *Config) AdminRanges() ([]ipfilter.CIDR, error) {
	return ipfilter.ParseCIDRList(c.AdminAllowedCIDRs)
}

// OriginGateEnabled reports whether the admin origin filter is configured.
func (c *Config) OriginGateEnabled() bool {
	return strings.TrimSpace(c.AdminAllowedCIDRs) != ""
}

// BasePublicURL returns PublicURL without a trailing slash.
func (c *Config) BasePublicURL() string {
	return strings.TrimSuffix(c.PublicURL, "/")
}
