// Package config loads the server configuration from defaults, an optional
// YAML file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OAuthClient holds the credentials of one OAuth application.
type OAuthClient struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// Enabled reports whether both credentials are present.
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type Config struct {
	ListenAddr        string  `yaml:"listen_addr"`         // HTTP listen address (default ":8080")
	DBPath            string  `yaml:"db_path"`             // SQLite file (default "authform.sqlite")
	Env               string  `yaml:"env"`                 // "development" (default) or "production"
	LogLevel          string  `yaml:"log_level"`           // debug, info, warn, error (default "info")
	SessionCookieName string  `yaml:"session_cookie_name"` // default "session"
	SessionTTL        int     `yaml:"session_ttl"`         // seconds (default 86400)
	TrustProxy        bool    `yaml:"trust_proxy"`         // read client IP from X-Forwarded-For
	RateLimitRPS      float64 `yaml:"rate_limit_rps"`      // form posts per second per client (default 5)
	RateLimitBurst    int     `yaml:"rate_limit_burst"`    // default 10
	PurgeSchedule     string  `yaml:"purge_schedule"`      // cron spec (default "@every 10m")
	BaseURL           string  `yaml:"base_url"`            // public URL used for OAuth redirects

	Google    OAuthClient `yaml:"google"`
	Microsoft OAuthClient `yaml:"microsoft"`

	// Warnings collects non-fatal problems found while loading. They are
	// logged once the logger exists.
	Warnings []string `yaml:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		DBPath:            "authform.sqlite",
		Env:               "development",
		LogLevel:          "info",
		SessionCookieName: "session",
		SessionTTL:        86400,
		RateLimitRPS:      5,
		RateLimitBurst:    10,
		PurgeSchedule:     "@every 10m",
	}
}

// SlogLevel maps LogLevel to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load builds the configuration. file is an optional YAML file and dotenv an
// optional .env file; missing files are skipped. Environment variables win
// over both.
func Load(file, dotenv string) (*Config, error) {
	cfg := Default()

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.Env, "ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.SessionCookieName, "SESSION_COOKIE_NAME")
	setString(&c.PurgeSchedule, "PURGE_SCHEDULE")
	setString(&c.BaseURL, "BASE_URL")
	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Microsoft.ClientID, "MICROSOFT_CLIENT_ID")
	setString(&c.Microsoft.ClientSecret, "MICROSOFT_CLIENT_SECRET")

	if v := os.Getenv("SESSION_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = n
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	c.TrustProxy = parseBoolEnvDefault("TRUST_PROXY", c.TrustProxy)
	return nil
}

func (c *Config) validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %d", c.SessionTTL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	oauth := c.Google.Enabled() || c.Microsoft.Enabled()
	if oauth && c.BaseURL == "" {
		if c.IsProduction() {
			return fmt.Errorf("BASE_URL is required in production when an OAuth provider is configured")
		}
		c.BaseURL = "http://localhost" + c.ListenAddr
		c.Warnings = append(c.Warnings, "BASE_URL not set, OAuth redirects use "+c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultVal
}
