// Package handlers contains the update handlers behind the bot router.
package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/i18n"
	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/state"
	"github.com/anikeev-v/pogodnik/internal/weather"
)

// Handler processes bot commands and plain messages.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Deps bundles the services every handler constructor needs.
type Deps struct {
	Store        *profile.Store
	FSM          state.Machine
	Translations *i18n.Manager
	Weather      *weather.Client
	Log          *slog.Logger
}

// Translator resolves the reply language for a user, falling back to the
// default catalog when the user has not picked one yet.
func (d *Deps) Translator(userID int64) i18n.Translator {
	return d.Translations.Translator(string(d.Store.Profile(userID).Language))
}
