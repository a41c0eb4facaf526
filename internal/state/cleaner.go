package state

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner drops stale sessions on a schedule. A user who abandoned a city or
// language prompt falls back to Idle instead of being stuck waiting forever.
type Cleaner struct {
	storage  Storage
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(storage Storage, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		storage:  storage,
		log:      log,
		ttl:      ttl,
		interval: interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.storage == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	sessions, err := c.storage.AllSessions(ctx)
	if err != nil {
		c.log.Error("session cleaner failed to list sessions", slog.Any("error", err))
		return
	}

	cutoff := time.Now().Add(-c.ttl)
	removed := 0

	for _, session := range sessions {
		if session == nil || session.UpdatedAt.After(cutoff) {
			continue
		}

		if err := c.storage.ClearSession(ctx, session.UserID); err != nil {
			c.log.Error("session cleaner failed to clear session",
				slog.Int64("user_id", session.UserID), slog.Any("error", err))
			continue
		}
		removed++
	}

	if removed > 0 {
		c.log.Info("session cleaner removed stale sessions", slog.Int("count", removed))
	}
}
