package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the Sin Trade education bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	AI        AIConfig        `mapstructure:"ai"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// BotConfig configures the Telegram transport. Token is the only setting the
// bot refuses to start without.
type BotConfig struct {
	Token       string        `mapstructure:"token" validate:"required"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`

	// AdminIDs may use /setlevel, /setaccess and /setfocus on other users.
	AdminIDs []int64 `mapstructure:"admin_ids"`
}

// AIConfig configures the optional generation backend. An empty APIKey means
// static content only.
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	SiteURL string        `mapstructure:"site_url"`
	AppName string        `mapstructure:"app_name"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether dynamic generation is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// SessionConfig selects and tunes the profile store backend.
type SessionConfig struct {
	Backend         string        `mapstructure:"backend" validate:"omitempty,oneof=memory redis postgres"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig configures the Redis connection used for sessions, locks and
// rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig configures the PostgreSQL connection for the durable
// session backend.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ServerConfig configures the HTTP server exposing health and metrics.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LogConfig configures structured logging output and rotation.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// RateLimitConfig tunes per-user command throttling.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`

	// Whitelist bypasses throttling entirely, typically admin accounts.
	Whitelist []int64 `mapstructure:"whitelist"`

	// Commands overrides the default rule for expensive commands such as
	// askme or simulate.
	Commands map[string]RateLimitRule `mapstructure:"commands"`
}

// RateLimitRule is a single requests-per-window rule.
type RateLimitRule struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// JobsConfig configures background task processing.
type JobsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Concurrency int    `mapstructure:"concurrency"`
	Queue       string `mapstructure:"queue"`
}

func (c *Config) applyDefaults() {
	if c.Bot.PollTimeout <= 0 {
		c.Bot.PollTimeout = 10 * time.Second
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 20 * time.Second
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Session.CleanupInterval <= 0 {
		c.Session.CleanupInterval = time.Hour
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 20
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Jobs.Concurrency <= 0 {
		c.Jobs.Concurrency = 5
	}
	if c.Jobs.Queue == "" {
		c.Jobs.Queue = "edubot"
	}
}

// IsAdmin reports whether the user may run administrative commands.
func (c BotConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
