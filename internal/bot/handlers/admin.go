package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/broadcast"
	apperrors "github.com/anikeev-v/pogodnik/internal/errors"
)

// NewStatsHandler reports aggregate usage counters to administrators.
// Non-admin invocations are ignored without a reply.
func NewStatsHandler(d *Deps, isAdmin func(userID int64) bool) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || !isAdmin(c.Sender().ID) {
			return nil
		}

		tr := d.Translator(c.Sender().ID)
		stats := d.Store.Stats()

		return c.Send(tr.Tf("admin.stats",
			stats.TotalUsers,
			stats.ActiveUsers,
			stats.WeatherRequests,
			stats.ForecastRequests,
		), telebot.ModeHTML)
	}
}

// NewBanHandler bans the user given as the command argument.
func NewBanHandler(d *Deps, isAdmin func(userID int64) bool) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || !isAdmin(c.Sender().ID) {
			return nil
		}

		tr := d.Translator(c.Sender().ID)

		target, err := strconv.ParseInt(commandPayload(c.Text()), 10, 64)
		if err != nil {
			return c.Send(tr.T("admin.ban_usage"), telebot.ModeHTML)
		}

		if err := d.Store.Ban(target); err != nil {
			return apperrors.NewStorageError(err)
		}

		d.Log.Info("user banned", slog.Int64("user_id", target), slog.Int64("admin_id", c.Sender().ID))
		return c.Send(tr.Tf("admin.banned", target), telebot.ModeHTML)
	}
}

// NewUnbanHandler lifts a ban for the user given as the command argument.
func NewUnbanHandler(d *Deps, isAdmin func(userID int64) bool) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || !isAdmin(c.Sender().ID) {
			return nil
		}

		tr := d.Translator(c.Sender().ID)

		target, err := strconv.ParseInt(commandPayload(c.Text()), 10, 64)
		if err != nil {
			return c.Send(tr.T("admin.unban_usage"), telebot.ModeHTML)
		}

		if err := d.Store.Unban(target); err != nil {
			return apperrors.NewStorageError(err)
		}

		d.Log.Info("user unbanned", slog.Int64("user_id", target), slog.Int64("admin_id", c.Sender().ID))
		return c.Send(tr.Tf("admin.unbanned", target), telebot.ModeHTML)
	}
}

// NewBroadcastHandler sends the command payload to every known user and
// reports delivery totals back to the administrator.
func NewBroadcastHandler(d *Deps, isAdmin func(userID int64) bool, caster *broadcast.Broadcaster) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || !isAdmin(c.Sender().ID) {
			return nil
		}

		tr := d.Translator(c.Sender().ID)

		text := commandPayload(c.Text())
		if text == "" {
			return c.Send(tr.T("admin.broadcast_usage"), telebot.ModeHTML)
		}

		audience := d.Store.UserIDs()
		if err := c.Send(tr.Tf("admin.broadcast_started", len(audience)), telebot.ModeHTML); err != nil {
			return err
		}

		report := caster.Run(context.Background(), audience, text)

		return c.Send(tr.Tf("admin.broadcast_done", report.Success, report.Failed), telebot.ModeHTML)
	}
}

// commandPayload returns the text following the command word, trimmed.
func commandPayload(text string) string {
	_, payload, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(payload)
}
