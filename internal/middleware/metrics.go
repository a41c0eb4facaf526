package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/bot/handlers"
	"github.com/anikeev-v/pogodnik/internal/intent"
	"github.com/anikeev-v/pogodnik/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(resolver *intent.Resolver) func(handlers.Handler) handlers.Handler {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			err := next(c)

			status := "ok"
			if err != nil {
				status = "error"
			}

			metrics.RecordUpdate(updateLabel(c, resolver), status, time.Since(start))

			return err
		}
	}
}

func updateLabel(c telebot.Context, resolver *intent.Resolver) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil {
		return "callback"
	}

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		if len(fields) > 0 {
			cmd, _, _ := strings.Cut(fields[0], "@")
			return cmd
		}
	}

	if resolver != nil {
		if in := resolver.Resolve(text); in != intent.Unknown {
			return in.String()
		}
	}

	if text != "" {
		return "text"
	}

	return "unknown"
}
