package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/i18n"
	"github.com/anikeev-v/pogodnik/internal/ratelimit"
	"github.com/anikeev-v/pogodnik/pkg/config"
)

// RateLimitMiddleware enforces per-user rate limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter      ratelimit.Limiter
	settings     func() config.RateLimitConfig
	translations *i18n.Manager
	langFor      func(userID int64) string
	log          *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
// settings is re-read on every update so configuration reloads take effect
// without a restart. langFor resolves the reply language for a user.
func NewRateLimitMiddleware(
	limiter ratelimit.Limiter,
	settings func() config.RateLimitConfig,
	translations *i18n.Manager,
	langFor func(userID int64) string,
	log *slog.Logger,
) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter:      limiter,
		settings:     settings,
		translations: translations,
		langFor:      langFor,
		log:          log,
	}
}

// Handle returns a telebot middleware that enforces per-user rate limits.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.settings == nil {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		cfg := m.settings()
		if !cfg.Enabled {
			return next(c)
		}

		userID := sender.ID
		for _, id := range cfg.Whitelist {
			if id == userID {
				return next(c)
			}
		}

		key := fmt.Sprintf("user:%d", userID)
		result, err := m.limiter.Check(context.Background(), key, cfg.PerUser.Limit, cfg.PerUser.Window)
		if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
			// Limiter backend trouble fails open: dropping updates over an
			// unreachable redis would be worse than briefly unthrottled users.
			m.log.Warn("rate limiter error", slog.Int64("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if result == nil || !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.Int64("user_id", userID))

			lang := ""
			if m.langFor != nil {
				lang = m.langFor(userID)
			}
			return c.Send(m.translations.Translator(lang).T("rate_limited"))
		}

		return next(c)
	}
}
