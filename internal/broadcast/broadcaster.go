// Package broadcast delivers an admin message to every known user.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/anikeev-v/pogodnik/pkg/metrics"
)

const defaultDelay = 100 * time.Millisecond

// Sender delivers a single message to a user. The telegram bot satisfies this
// through a thin adapter, and tests substitute a fake.
type Sender interface {
	SendTo(userID int64, text string) error
}

// Report summarizes a finished broadcast.
type Report struct {
	Success int
	Failed  int
}

// Broadcaster fans a message out sequentially with a fixed delay between
// sends to respect the transport's rate limits. A failed delivery to one
// recipient never aborts the rest.
type Broadcaster struct {
	sender Sender
	delay  time.Duration
	log    *slog.Logger
}

// New constructs a Broadcaster. A non-positive delay falls back to the default.
func New(sender Sender, delay time.Duration, log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	if delay <= 0 {
		delay = defaultDelay
	}

	return &Broadcaster{
		sender: sender,
		delay:  delay,
		log:    log,
	}
}

// Run sends text to every id in order, pacing between sends. Cancellation
// stops the remaining sends; already-attempted deliveries stay counted.
func (b *Broadcaster) Run(ctx context.Context, userIDs []int64, text string) Report {
	var report Report

	for i, userID := range userIDs {
		if ctx.Err() != nil {
			b.log.Warn("broadcast cancelled",
				slog.Int("sent", i), slog.Int("total", len(userIDs)))
			return report
		}

		if err := b.sender.SendTo(userID, text); err != nil {
			b.log.Error("broadcast delivery failed",
				slog.Int64("user_id", userID), slog.Any("error", err))
			metrics.RecordBroadcastDelivery("failed")
			report.Failed++
		} else {
			metrics.RecordBroadcastDelivery("success")
			report.Success++
		}

		if i == len(userIDs)-1 {
			break
		}

		select {
		case <-ctx.Done():
			return report
		case <-time.After(b.delay):
		}
	}

	return report
}
