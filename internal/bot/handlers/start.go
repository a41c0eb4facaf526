package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/bot/keyboard"
	apperrors "github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/state"
)

// LanguageDataPrefix marks language picker callbacks.
const LanguageDataPrefix = "lang_"

// NewStartHandler greets the user and opens the language picker.
func NewStartHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			d.Log.Warn("start handler invoked without sender")
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		if err := c.Send(tr.Tf("welcome", c.Sender().FirstName), keyboard.LanguagePicker(), telebot.ModeHTML); err != nil {
			return err
		}

		return d.FSM.TransitionTo(context.Background(), userID, state.StateAwaitingLanguage)
	}
}

// NewChangeLanguageHandler re-opens the language picker for an onboarded user.
func NewChangeLanguageHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		if err := c.Send(tr.Tf("welcome", c.Sender().FirstName), keyboard.LanguagePicker(), telebot.ModeHTML); err != nil {
			return err
		}

		return d.FSM.TransitionTo(context.Background(), userID, state.StateAwaitingLanguage)
	}
}

// NewLanguageCallbackHandler persists the picked language. Onboarded users are
// returned to the main menu; users without a saved city continue to city entry.
func NewLanguageCallbackHandler(d *Deps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		data := ""
		if cb := c.Callback(); cb != nil {
			data = cb.Data
		}

		lang, ok := profile.ParseLanguage(strings.TrimPrefix(strings.TrimSpace(data), LanguageDataPrefix))
		if !ok {
			d.Log.Warn("unknown language option", slog.String("data", data))
			return respondCallback(c, "", true)
		}

		userID := c.Sender().ID
		if err := d.Store.SetLanguage(userID, lang); err != nil {
			return apperrors.NewStorageError(err)
		}

		tr := d.Translations.Translator(string(lang))
		_ = respondCallback(c, tr.T("language_set"), false)

		ctx := context.Background()

		p := d.Store.Profile(userID)
		if p.City == "" {
			if err := c.Send(tr.T("ask_city"), telebot.ModeHTML); err != nil {
				return err
			}
			return d.FSM.TransitionTo(ctx, userID, state.StateAwaitingCity)
		}

		if err := c.Send(tr.Tf("current_city", p.City), keyboard.MainMenu(tr), telebot.ModeHTML); err != nil {
			return err
		}
		return d.FSM.Reset(ctx, userID)
	}
}

func respondCallback(c telebot.Context, text string, alert bool) error {
	if c == nil {
		return nil
	}
	return c.Respond(&telebot.CallbackResponse{
		Text:      text,
		ShowAlert: alert,
	})
}
