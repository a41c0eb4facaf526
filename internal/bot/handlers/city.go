package handlers

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/bot/keyboard"
	apperrors "github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/internal/state"
)

const minCityLength = 2

// NewChangeCityHandler prompts for a new city and switches the conversation
// into city entry.
func NewChangeCityHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		if err := c.Send(tr.T("change_city_prompt"), telebot.ModeHTML); err != nil {
			return err
		}

		return d.FSM.TransitionTo(context.Background(), userID, state.StateAwaitingCity)
	}
}

// NewCityInputHandler consumes free text while the user is entering a city.
// The candidate is verified against the weather provider before it is saved;
// on failure the user stays in city entry and may retry.
func NewCityInputHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		city := strings.TrimSpace(c.Text())
		if utf8.RuneCountInString(city) < minCityLength {
			return c.Send(tr.T("city_invalid"), telebot.ModeHTML)
		}

		if err := c.Send(tr.T("city_check"), telebot.ModeHTML); err != nil {
			return err
		}

		ctx := context.Background()
		if _, err := d.Weather.Current(ctx, city, tr.Lang()); err != nil {
			d.Log.Info("city verification failed",
				slog.Int64("user_id", userID),
				slog.String("city", city),
				slog.Any("error", err),
			)
			return c.Send(tr.T("city_invalid"), telebot.ModeHTML)
		}

		if err := d.Store.SetCity(userID, city); err != nil {
			return apperrors.NewStorageError(err)
		}

		if err := d.FSM.Reset(ctx, userID); err != nil {
			return err
		}

		return c.Send(tr.Tf("city_saved", city), keyboard.MainMenu(tr), telebot.ModeHTML)
	}
}
