package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the per-environment YAML file and environment
// variables, validates it, and returns the resulting Config alongside the
// viper instance for live reloading.
func Load() (*Config, *viper.Viper, error) {
	// Missing env files are fine: production supplies real env vars.
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Secrets never live in the YAML files.
	_ = v.BindEnv("bot.token", "BOT_TOKEN")
	_ = v.BindEnv("weather.api_key", "WEATHER_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
		// No config file: run on defaults plus environment.
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	if len(cfg.Admins) == 0 {
		admins, err := adminsFromEnv()
		if err != nil {
			return nil, nil, err
		}
		cfg.Admins = admins
	}

	if err := validate(cfg); err != nil {
		return nil, nil, err
	}

	return cfg, v, nil
}

// Watch re-reads the config file on change and hands the re-validated result
// to onChange. Invalid updates are logged and dropped, keeping the previous
// configuration active.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	if v == nil || onChange == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		log.Info("config file changed", slog.String("file", event.Name))

		cfg, err := unmarshal(v)
		if err != nil {
			log.Error("config reload failed", slog.Any("error", err))
			return
		}

		if err := validate(cfg); err != nil {
			log.Error("reloaded config is invalid, keeping previous", slog.Any("error", err))
			return
		}

		onChange(cfg)
	})
	v.WatchConfig()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.mode", "polling")
	v.SetDefault("bot.timeout", 10*time.Second)

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5/")
	v.SetDefault("weather.timeout", 10*time.Second)

	v.SetDefault("storage.path", "data/user_data.json")

	v.SetDefault("locales.dir", "locales")
	v.SetDefault("locales.default_language", "ru")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("sentry.enabled", false)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.per_user.limit", 20)
	v.SetDefault("rate_limit.per_user.window", time.Minute)

	v.SetDefault("broadcast.delay", 100*time.Millisecond)

	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", 5*time.Minute)
}

// adminsFromEnv parses the ADMIN_IDS environment variable, a comma-separated
// list of numeric user ids.
func adminsFromEnv() ([]int64, error) {
	raw := os.Getenv("ADMIN_IDS")
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	admins := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ADMIN_IDS entry %q: %w", part, err)
		}
		admins = append(admins, id)
	}

	return admins, nil
}
