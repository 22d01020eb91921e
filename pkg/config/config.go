package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the Aurum community bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Discord   DiscordConfig   `mapstructure:"discord" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Twitter   TwitterConfig   `mapstructure:"twitter" validate:"required"`
	Poller    PollerConfig    `mapstructure:"poller" validate:"required"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// DiscordConfig configures the gateway connection and command surface.
type DiscordConfig struct {
	Token             string   `mapstructure:"token" validate:"required"`
	GuildID           string   `mapstructure:"guild_id"`
	AdminRoleIDs      []string `mapstructure:"admin_role_ids"`
	AnnounceChannelID string   `mapstructure:"announce_channel_id"`
}

// DatabaseConfig configures the PostgreSQL ledger store.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns a PostgreSQL connection string based on config values.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		sslMode,
	)
}

// RedisConfig configures the optional Redis connection. When Addr is empty
// the bot falls back to in-memory rate limiting and no user cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis connection is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// TwitterConfig configures the engagement source client.
type TwitterConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required"`
	BearerToken string        `mapstructure:"bearer_token" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RetryCount  int           `mapstructure:"retry_count"`
}

// PollerConfig configures the engagement poller.
type PollerConfig struct {
	AccountHandle string `mapstructure:"account_handle" validate:"required"`
	Interval      string `mapstructure:"interval" validate:"required"`
	PostLimit     int    `mapstructure:"post_limit" validate:"min=1,max=100"`
}

// LoggerConfig configures structured logging.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ServerConfig configures the HTTP server for metrics and health checks.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RateLimitRule pairs a request limit with its window.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// RateLimitConfig configures per-user command rate limiting.
type RateLimitConfig struct {
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Whitelist []string      `mapstructure:"whitelist"`
}

// PerUserLimit parses the per-user rule into a limit and window.
func (c RateLimitConfig) PerUserLimit() (int, time.Duration, error) {
	if c.PerUser.Window == "" {
		return 0, 0, fmt.Errorf("per-user rate limit window is not set")
	}

	window, err := time.ParseDuration(c.PerUser.Window)
	if err != nil {
		return 0, 0, fmt.Errorf("parse per-user rate limit window: %w", err)
	}

	return c.PerUser.Limit, window, nil
}

// IsWhitelisted returns true if the discord ID bypasses rate limits.
func (c RateLimitConfig) IsWhitelisted(discordID string) bool {
	for _, id := range c.Whitelist {
		if id == discordID {
			return true
		}
	}

	return false
}

// CacheConfig configures the user cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}
