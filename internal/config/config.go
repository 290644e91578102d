// Package config provides configuration loading and validation for the job
// assistant.
//
// Values come from three layers, each overriding the previous one: built-in
// defaults, an optional JSON or YAML file, and environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-assistant/internal/logging"
)

// Config is the complete front end configuration.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Backend   BackendConfig   `json:"backend" yaml:"backend"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Markdown  MarkdownConfig  `json:"markdown" yaml:"markdown"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string   `json:"host,omitempty" yaml:"host,omitempty" envconfig:"HOST"`
	Port            int      `json:"port,omitempty" yaml:"port,omitempty" envconfig:"PORT"`
	ReadTimeout     Duration `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty" envconfig:"SERVER_READ_TIMEOUT"`
	ShutdownTimeout Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
	// MaxUploadBytes caps the resume upload body.
	MaxUploadBytes int64 `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty" envconfig:"MAX_UPLOAD_BYTES"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig configures the backend API client.
type BackendConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty" envconfig:"BACKEND_URL"`
	// Timeout of zero means no client timeout.
	Timeout           Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" envconfig:"BACKEND_TIMEOUT"`
	Retries           int      `json:"retries,omitempty" yaml:"retries,omitempty" envconfig:"BACKEND_RETRIES"`
	ValidateResponses bool     `json:"validate_responses,omitempty" yaml:"validate_responses,omitempty" envconfig:"BACKEND_VALIDATE_RESPONSES"`
	UserAgent         string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty" envconfig:"BACKEND_USER_AGENT"`
}

// SessionConfig configures visitor sessions.
type SessionConfig struct {
	IdleTTL         Duration `json:"idle_ttl,omitempty" yaml:"idle_ttl,omitempty" envconfig:"SESSION_IDLE_TTL"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty" yaml:"cleanup_interval,omitempty" envconfig:"SESSION_CLEANUP_INTERVAL"`
	// CookieSecret signs the visitor cookie. Empty means a random per-process
	// secret, so visitors get new sessions after a restart.
	CookieSecret string `json:"-" yaml:"-" envconfig:"JWT_SECRET"`
	CookieSecure bool   `json:"cookie_secure,omitempty" yaml:"cookie_secure,omitempty" envconfig:"SESSION_COOKIE_SECURE"`
	// CookieTTL is how long a visitor cookie stays valid.
	CookieTTL Duration `json:"cookie_ttl,omitempty" yaml:"cookie_ttl,omitempty" envconfig:"SESSION_COOKIE_TTL"`
}

// AuthConfig gates the front end behind HTTP basic auth when PasswordHash is set.
type AuthConfig struct {
	Username     string `json:"username,omitempty" yaml:"username,omitempty" envconfig:"AUTH_USERNAME"`
	PasswordHash string `json:"-" yaml:"-" envconfig:"AUTH_PASSWORD_HASH"`
}

// Enabled reports whether basic auth is required.
func (c AuthConfig) Enabled() bool {
	return c.PasswordHash != ""
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" envconfig:"RATE_LIMIT_ENABLED"`
	// DefaultLimit requests are allowed per DefaultWindow on routes without
	// their own limit.
	DefaultLimit  int      `json:"default_limit,omitempty" yaml:"default_limit,omitempty" envconfig:"RATE_LIMIT_DEFAULT_LIMIT"`
	DefaultWindow Duration `json:"default_window,omitempty" yaml:"default_window,omitempty" envconfig:"RATE_LIMIT_DEFAULT_WINDOW"`
	// FlowLimit applies to routes that call the backend.
	FlowLimit       int      `json:"flow_limit,omitempty" yaml:"flow_limit,omitempty" envconfig:"RATE_LIMIT_FLOW_LIMIT"`
	FlowWindow      Duration `json:"flow_window,omitempty" yaml:"flow_window,omitempty" envconfig:"RATE_LIMIT_FLOW_WINDOW"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty" yaml:"cleanup_interval,omitempty" envconfig:"RATE_LIMIT_CLEANUP_INTERVAL"`
	Whitelist       []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty" envconfig:"RATE_LIMIT_WHITELIST"`
	Blacklist       []string `json:"blacklist,omitempty" yaml:"blacklist,omitempty" envconfig:"RATE_LIMIT_BLACKLIST"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `json:"level,omitempty" yaml:"level,omitempty" envconfig:"LOG_LEVEL"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty" envconfig:"LOG_DEV"`
}

// Logger converts the section to a logging.Config.
func (c LoggingConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Development = c.Development
	return cfg
}

// DatabaseConfig configures the optional flow run log.
type DatabaseConfig struct {
	URL string `json:"-" yaml:"-" envconfig:"DATABASE_URL"`
}

// MarkdownConfig configures brief rendering.
type MarkdownConfig struct {
	Sanitize bool `json:"sanitize,omitempty" yaml:"sanitize,omitempty" envconfig:"MARKDOWN_SANITIZE"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			MaxUploadBytes:  16 << 20,
		},
		Backend: BackendConfig{
			URL:       "http://localhost:5000",
			UserAgent: "JobAssistant/1.0",
		},
		Session: SessionConfig{
			IdleTTL:         Duration(2 * time.Hour),
			CleanupInterval: Duration(5 * time.Minute),
			CookieTTL:       Duration(24 * time.Hour),
		},
		Auth: AuthConfig{Username: "admin"},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   Duration(time.Minute),
			FlowLimit:       60,
			FlowWindow:      Duration(time.Minute),
			CleanupInterval: Duration(5 * time.Minute),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the file at path (if any) and
// the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON or YAML file without defaults
// or environment overrides.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any of its variables set in the environment.
func ApplyEnv(cfg *Config) error {
	sections := []any{
		&cfg.Server, &cfg.Backend, &cfg.Session, &cfg.Auth,
		&cfg.RateLimit, &cfg.Logging, &cfg.Database, &cfg.Markdown,
	}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
	}
	return nil
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxUploadBytes < 0 {
		return invalid("server.max_upload_bytes", "must be non-negative")
	}
	if c.Backend.URL == "" {
		return invalid("backend.url", "is required")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return invalid("backend.url", "must be an http or https URL")
	}
	if c.Backend.Timeout < 0 {
		return invalid("backend.timeout", "must be non-negative")
	}
	if c.Backend.Retries < 0 {
		return invalid("backend.retries", "must be non-negative")
	}
	if c.Session.IdleTTL <= 0 {
		return invalid("session.idle_ttl", "must be positive")
	}
	if c.Session.CookieTTL <= 0 {
		return invalid("session.cookie_ttl", "must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit < 0 || c.RateLimit.FlowLimit < 0 {
			return invalid("rate_limit", "limits must be non-negative")
		}
		if c.RateLimit.DefaultWindow <= 0 || c.RateLimit.FlowWindow <= 0 {
			return invalid("rate_limit", "windows must be positive")
		}
	}
	if c.Auth.Enabled() && c.Auth.Username == "" {
		return invalid("auth.username", "is required when a password hash is set")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued scalar fields filled
// from defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fillString(&result.Server.Host, defaults.Server.Host)
	fillString(&result.Backend.URL, defaults.Backend.URL)
	fillString(&result.Backend.UserAgent, defaults.Backend.UserAgent)
	fillString(&result.Session.CookieSecret, defaults.Session.CookieSecret)
	fillString(&result.Auth.Username, defaults.Auth.Username)
	fillString(&result.Auth.PasswordHash, defaults.Auth.PasswordHash)
	fillString(&result.Logging.Level, defaults.Logging.Level)
	fillString(&result.Database.URL, defaults.Database.URL)

	// Numeric fields: use default if zero
	fill(&result.Server.Port, defaults.Server.Port)
	fill(&result.Server.ReadTimeout, defaults.Server.ReadTimeout)
	fill(&result.Server.ShutdownTimeout, defaults.Server.ShutdownTimeout)
	fill(&result.Server.MaxUploadBytes, defaults.Server.MaxUploadBytes)
	fill(&result.Backend.Timeout, defaults.Backend.Timeout)
	fill(&result.Backend.Retries, defaults.Backend.Retries)
	fill(&result.Session.IdleTTL, defaults.Session.IdleTTL)
	fill(&result.Session.CleanupInterval, defaults.Session.CleanupInterval)
	fill(&result.Session.CookieTTL, defaults.Session.CookieTTL)
	fill(&result.RateLimit.DefaultLimit, defaults.RateLimit.DefaultLimit)
	fill(&result.RateLimit.DefaultWindow, defaults.RateLimit.DefaultWindow)
	fill(&result.RateLimit.FlowLimit, defaults.RateLimit.FlowLimit)
	fill(&result.RateLimit.FlowWindow, defaults.RateLimit.FlowWindow)
	fill(&result.RateLimit.CleanupInterval, defaults.RateLimit.CleanupInterval)

	if len(result.RateLimit.Whitelist) == 0 {
		result.RateLimit.Whitelist = defaults.RateLimit.Whitelist
	}
	if len(result.RateLimit.Blacklist) == 0 {
		result.RateLimit.Blacklist = defaults.RateLimit.Blacklist
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func fill[T int | int64 | Duration](dst *T, def T) {
	if *dst == 0 {
		*dst = def
	}
}
