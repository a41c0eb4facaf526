// Package config provides configuration loading and validation utilities.
package config

import "time"

// Config holds runtime configuration for the weather bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Weather   WeatherConfig   `mapstructure:"weather" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Locales   LocalesConfig   `mapstructure:"locales"`
	Admins    []int64         `mapstructure:"admins"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Session   SessionConfig   `mapstructure:"session"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
	Listen  string        `mapstructure:"listen"`
}

// WeatherConfig configures the weather data provider.
type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key" validate:"required"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig configures the profile document location.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LocalesConfig configures the localization catalogs.
type LocalesConfig struct {
	Dir             string `mapstructure:"dir" validate:"required"`
	DefaultLanguage string `mapstructure:"default_language" validate:"oneof=ru en"`
}

// ServerConfig configures the ops HTTP server (metrics and health).
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// RateLimitRule is a limit over a sliding window.
type RateLimitRule struct {
	Limit  int           `mapstructure:"limit" validate:"min=1"`
	Window time.Duration `mapstructure:"window" validate:"min=1ms"`
}

// RedisConfig carries connection parameters for the optional redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig configures per-user throttling of inbound updates.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Backend   string        `mapstructure:"backend" validate:"oneof=memory redis"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Whitelist []int64       `mapstructure:"whitelist"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

// BroadcastConfig configures admin broadcast pacing.
type BroadcastConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// SessionConfig configures conversation session expiry.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// IsAdmin reports whether userID is in the configured administrator list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}
