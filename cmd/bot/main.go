package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/anikeev-v/pogodnik/internal/bot"
	"github.com/anikeev-v/pogodnik/internal/health"
	"github.com/anikeev-v/pogodnik/internal/i18n"
	"github.com/anikeev-v/pogodnik/internal/lifecycle"
	"github.com/anikeev-v/pogodnik/internal/middleware"
	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/ratelimit"
	"github.com/anikeev-v/pogodnik/internal/state"
	"github.com/anikeev-v/pogodnik/internal/weather"
	"github.com/anikeev-v/pogodnik/pkg/config"
	"github.com/anikeev-v/pogodnik/pkg/graceful"
	"github.com/anikeev-v/pogodnik/pkg/logger"
	"github.com/anikeev-v/pogodnik/pkg/metrics"
)

const collectInterval = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("initialize sentry: %w", err)
		}
	}

	log := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)

	log.Info("starting weather bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("ops_port", cfg.Server.Port),
	)

	store, err := profile.Open(cfg.Storage.Path, log)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}

	translations, err := i18n.LoadDir(cfg.Locales.Dir, cfg.Locales.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	sessions := state.NewMemoryStorage()
	fsm := state.NewMachine(sessions, log)
	go state.NewCleaner(sessions, log, cfg.Session.TTL, cfg.Session.CleanupInterval).Run(ctx)

	weatherClient := weather.NewClient(weather.Config{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.BaseURL,
		Timeout: cfg.Weather.Timeout,
	}, log)

	// Admin list and rate limits follow the config file without a restart.
	var current atomic.Pointer[config.Config]
	current.Store(cfg)
	config.Watch(v, log, func(next *config.Config) {
		current.Store(next)
	})

	isAdmin := func(userID int64) bool {
		return current.Load().IsAdmin(userID)
	}
	langFor := func(userID int64) string {
		return string(store.Profile(userID).Language)
	}

	shutdown := lifecycle.NewShutdown(log)

	var rateLimitMw *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		var limiter ratelimit.Limiter

		if cfg.RateLimit.Backend == "redis" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RateLimit.Redis.Addr,
				Password: cfg.RateLimit.Redis.Password,
				DB:       cfg.RateLimit.Redis.DB,
			})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			shutdown.Register("redis client", func(context.Context) error {
				return redisClient.Close()
			})
			limiter = ratelimit.NewRedisLimiter(redisClient, log)
		} else {
			memLimiter := ratelimit.NewMemoryLimiter(log)
			go func() {
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						memLimiter.Cleanup(cfg.RateLimit.PerUser.Window)
					}
				}
			}()
			limiter = memLimiter
		}

		rateLimitMw = middleware.NewRateLimitMiddleware(
			limiter,
			func() config.RateLimitConfig { return current.Load().RateLimit },
			translations,
			langFor,
			log,
		)
	}

	b, err := bot.New(*cfg, log, store, fsm, translations, weatherClient, isAdmin, rateLimitMw)
	if err != nil {
		return fmt.Errorf("build bot: %w", err)
	}

	go metrics.NewCollector(store, fsm, collectInterval).Run(ctx)

	checker := health.NewChecker(log)
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	checker.AddCheck("storage", store)
	checker.AddCheck("weather", weatherClient)

	opsServer := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: opsHandler(log, checker),
	}, cfg.Server.ShutdownTimeout)

	go func() {
		if err := opsServer.ListenAndServe(ctx); err != nil {
			log.Error("ops server exited", slog.Any("error", err))
		}
	}()

	shutdown.Register("telegram bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("profile store", func(context.Context) error {
		return store.Flush()
	})
	if cfg.Sentry.Enabled {
		shutdown.Register("sentry", func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	go b.Start()
	log.Info("bot is accepting updates")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}

func opsHandler(log *slog.Logger, checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !health.Healthy(results) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(results)
	})

	return logger.Middleware(middleware.New(log)(mux))
}
