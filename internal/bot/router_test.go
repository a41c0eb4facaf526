package bot

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/bot/handlers"
	"github.com/anikeev-v/pogodnik/internal/i18n"
	"github.com/anikeev-v/pogodnik/internal/intent"
	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/state"
)

type fakeContext struct {
	telebot.Context

	sender   *telebot.User
	text     string
	callback *telebot.Callback
	sent     []string
}

func (f *fakeContext) Sender() *telebot.User { return f.sender }

func (f *fakeContext) Text() string { return f.text }

func (f *fakeContext) Callback() *telebot.Callback { return f.callback }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func loadTranslations(t *testing.T) *i18n.Manager {
	t.Helper()

	translations, err := i18n.LoadDir("../../locales", "ru")
	require.NoError(t, err)
	return translations
}

func newTestRouter(t *testing.T) (*Router, state.Machine) {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	fsm := state.NewMachine(state.NewMemoryStorage(), log)
	dispatcher := NewDispatcher(fsm, log)
	resolver := intent.NewResolver(loadTranslations(t))

	return NewRouter(dispatcher, resolver, log), fsm
}

func record(calls *[]string, name string) handlers.Handler {
	return func(telebot.Context) error {
		*calls = append(*calls, name)
		return nil
	}
}

func TestRouter_CommandWins(t *testing.T) {
	router, fsm := newTestRouter(t)

	var calls []string
	router.RegisterCommand(CommandWeather, record(&calls, "command"))
	router.dispatcher.RegisterStateHandler(state.StateAwaitingCity, record(&calls, "state"))
	require.NoError(t, fsm.TransitionTo(t.Context(), 1, state.StateAwaitingCity))

	c := &fakeContext{sender: &telebot.User{ID: 1}, text: "/weather@pogodnik_bot"}
	require.NoError(t, router.Route(c))

	assert.Equal(t, []string{"command"}, calls)
}

func TestRouter_StateConsumesFreeText(t *testing.T) {
	router, fsm := newTestRouter(t)

	var calls []string
	router.dispatcher.RegisterStateHandler(state.StateAwaitingCity, record(&calls, "state"))
	router.RegisterIntent(intent.Weather, record(&calls, "intent"))
	router.SetDefault(record(&calls, "default"))
	require.NoError(t, fsm.TransitionTo(t.Context(), 1, state.StateAwaitingCity))

	// A button label typed while entering a city is treated as the city text.
	c := &fakeContext{sender: &telebot.User{ID: 1}, text: "Get weather 🌤️"}
	require.NoError(t, router.Route(c))

	assert.Equal(t, []string{"state"}, calls)
}

func TestRouter_IntentResolvesButtonLabelAnyLanguage(t *testing.T) {
	router, _ := newTestRouter(t)

	var calls []string
	router.RegisterIntent(intent.Forecast, record(&calls, "forecast"))

	for _, label := range []string{"4-day forecast 📅", "Прогноз на 4 дня 📅", "/forecast"} {
		c := &fakeContext{sender: &telebot.User{ID: 1}, text: label}
		require.NoError(t, router.Route(c))
	}

	assert.Equal(t, []string{"forecast", "forecast", "forecast"}, calls)
}

func TestRouter_DefaultForUnmatchedText(t *testing.T) {
	router, _ := newTestRouter(t)

	var calls []string
	router.RegisterIntent(intent.Weather, record(&calls, "intent"))
	router.SetDefault(record(&calls, "default"))

	c := &fakeContext{sender: &telebot.User{ID: 1}, text: "what is the meaning of life"}
	require.NoError(t, router.Route(c))

	assert.Equal(t, []string{"default"}, calls)
}

func TestRouter_CallbackByPrefix(t *testing.T) {
	router, _ := newTestRouter(t)

	var calls []string
	router.RegisterCallback("lang_", func(c telebot.Context) error {
		calls = append(calls, "lang:"+c.Callback().Data)
		return nil
	})

	c := &fakeContext{sender: &telebot.User{ID: 1}, callback: &telebot.Callback{Data: "lang_en"}}
	require.NoError(t, router.Route(c))

	assert.Equal(t, []string{"lang:lang_en"}, calls)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	router, _ := newTestRouter(t)

	var calls []string
	mw := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				calls = append(calls, name)
				return next(c)
			}
		}
	}

	router.Use(mw("outer"))
	router.Use(mw("inner"))
	router.SetDefault(record(&calls, "handler"))

	c := &fakeContext{sender: &telebot.User{ID: 1}, text: "hello"}
	require.NoError(t, router.Route(c))

	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestRouter_StateDispatchRunsMiddlewares(t *testing.T) {
	router, fsm := newTestRouter(t)

	var calls []string
	router.Use(func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			calls = append(calls, "middleware")
			return next(c)
		}
	})
	router.dispatcher.RegisterStateHandler(state.StateAwaitingCity, record(&calls, "state"))
	require.NoError(t, fsm.TransitionTo(t.Context(), 1, state.StateAwaitingCity))

	c := &fakeContext{sender: &telebot.User{ID: 1}, text: "Paris"}
	require.NoError(t, router.Route(c))

	assert.Equal(t, []string{"middleware", "state"}, calls)
}

func TestRouter_BannedUserBlockedMidConversation(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	store, err := profile.Open(filepath.Join(t.TempDir(), "users.json"), log)
	require.NoError(t, err)

	router, fsm := newTestRouter(t)
	router.Use(BanGuardMiddleware(store, loadTranslations(t), log))

	var calls []string
	router.dispatcher.RegisterStateHandler(state.StateAwaitingCity, record(&calls, "state"))
	require.NoError(t, store.SetLanguage(1, profile.LanguageEN))
	require.NoError(t, fsm.TransitionTo(t.Context(), 1, state.StateAwaitingCity))
	require.NoError(t, store.Ban(1))

	c := &fakeContext{sender: &telebot.User{ID: 1}, text: "Paris"}
	require.NoError(t, router.Route(c))

	assert.Empty(t, calls)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "banned")

	current, err := fsm.Current(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, state.StateAwaitingCity, current)
}

func TestBanGuardMiddleware(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	store, err := profile.Open(filepath.Join(t.TempDir(), "users.json"), log)
	require.NoError(t, err)
	translations := loadTranslations(t)

	var handled bool
	next := handlers.Handler(func(telebot.Context) error {
		handled = true
		return nil
	})
	guarded := BanGuardMiddleware(store, translations, log)(next)

	require.NoError(t, store.SetLanguage(1, profile.LanguageEN))
	require.NoError(t, store.Ban(1))

	banned := &fakeContext{sender: &telebot.User{ID: 1}, text: "/stats"}
	require.NoError(t, guarded(banned))
	assert.False(t, handled)
	require.Len(t, banned.sent, 1)
	assert.Contains(t, banned.sent[0], "banned")

	clean := &fakeContext{sender: &telebot.User{ID: 2}, text: "/weather"}
	require.NoError(t, guarded(clean))
	assert.True(t, handled)
	assert.Empty(t, clean.sent)
}
