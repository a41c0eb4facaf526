package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/bot/handlers"
	"github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/internal/i18n"
	"github.com/anikeev-v/pogodnik/internal/profile"
)

// BanGuardMiddleware suppresses every update from a banned user. The user
// gets the localized ban notice and nothing else runs, admin commands
// included.
func BanGuardMiddleware(store *profile.Store, translations *i18n.Manager, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if store == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			userID := c.Sender().ID
			if !store.IsBanned(userID) {
				return next(c)
			}

			log.Info("dropped update from banned user", slog.Int64("user_id", userID))

			tr := translations.Translator(string(store.Profile(userID).Language))
			return c.Send(tr.T("banned"))
		}
	}
}

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler, translations *i18n.Manager, langFor func(userID int64) string) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					key := "internal_error"
					if errHandler != nil {
						appErr := errors.NewStateError(fmt.Sprintf("panic recovered: %v", r))
						if k := errHandler.Handle(context.Background(), appErr); k != "" {
							key = k
						}
					}

					if c != nil {
						if sendErr := c.Send(userMessage(translations, langFor, c, key)); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *errors.Handler, translations *i18n.Manager, langFor func(userID int64) string) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			key := "internal_error"
			if errHandler != nil {
				if k := errHandler.Handle(context.Background(), err); k != "" {
					key = k
				}
			}

			if c != nil {
				_ = c.Send(userMessage(translations, langFor, c, key))
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = cb.Data
				} else {
					action = c.Text()
				}
			}

			log.Info("handling update", slog.Int64("user_id", userID), slog.String("action", action))
			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// userMessage localizes a message key for the update's sender.
func userMessage(translations *i18n.Manager, langFor func(userID int64) string, c telebot.Context, key string) string {
	lang := ""
	if langFor != nil && c != nil && c.Sender() != nil {
		lang = langFor(c.Sender().ID)
	}
	return translations.Translator(lang).T(key)
}
