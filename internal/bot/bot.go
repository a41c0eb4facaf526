// Package bot wires the Telegram transport to the conversation handlers.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/bot/handlers"
	"github.com/anikeev-v/pogodnik/internal/broadcast"
	"github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/internal/i18n"
	"github.com/anikeev-v/pogodnik/internal/intent"
	"github.com/anikeev-v/pogodnik/internal/middleware"
	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/state"
	"github.com/anikeev-v/pogodnik/internal/weather"
	"github.com/anikeev-v/pogodnik/pkg/config"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	store       *profile.Store
	fsm         state.Machine
	rateLimitMw *middleware.RateLimitMiddleware
	router      *Router
	dispatcher  *Dispatcher
	broadcaster *broadcast.Broadcaster
	errHandler  *errors.Handler
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	store *profile.Store,
	fsm state.Machine,
	translations *i18n.Manager,
	weatherClient *weather.Client,
	isAdmin func(userID int64) bool,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Bot.Listen,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	resolver := intent.NewResolver(translations)
	dispatcher := NewDispatcher(fsm, log)
	router := NewRouter(dispatcher, resolver, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)
	broadcaster := broadcast.New(&telegramSender{bot: tb}, cfg.Broadcast.Delay, log)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		store:       store,
		fsm:         fsm,
		rateLimitMw: rateLimitMw,
		router:      router,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		errHandler:  errHandler,
	}

	deps := &handlers.Deps{
		Store:        store,
		FSM:          fsm,
		Translations: translations,
		Weather:      weatherClient,
		Log:          log,
	}

	b.setupRouter(deps, translations, resolver, isAdmin)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(deps *handlers.Deps, translations *i18n.Manager, resolver *intent.Resolver, isAdmin func(userID int64) bool) {
	if b.router == nil {
		return
	}

	langFor := func(userID int64) string {
		return string(b.store.Profile(userID).Language)
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler, translations, langFor))
	b.router.Use(BanGuardMiddleware(b.store, translations, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler, translations, langFor))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics(resolver))

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(deps))
	b.router.RegisterCommand(CommandWeather, handlers.NewWeatherHandler(deps))
	b.router.RegisterCommand(CommandForecast, handlers.NewForecastHandler(deps))
	b.router.RegisterCommand(CommandChangeCity, handlers.NewChangeCityHandler(deps))
	b.router.RegisterCommand(CommandChangeLanguage, handlers.NewChangeLanguageHandler(deps))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler(deps, isAdmin))

	b.router.RegisterCommand(CommandStats, handlers.NewStatsHandler(deps, isAdmin))
	b.router.RegisterCommand(CommandBan, handlers.NewBanHandler(deps, isAdmin))
	b.router.RegisterCommand(CommandUnban, handlers.NewUnbanHandler(deps, isAdmin))
	b.router.RegisterCommand(CommandBroadcast, handlers.NewBroadcastHandler(deps, isAdmin, b.broadcaster))

	b.router.RegisterCallback(handlers.LanguageDataPrefix, handlers.NewLanguageCallbackHandler(deps))

	b.router.RegisterIntent(intent.Weather, handlers.NewWeatherHandler(deps))
	b.router.RegisterIntent(intent.Forecast, handlers.NewForecastHandler(deps))
	b.router.RegisterIntent(intent.ChangeCity, handlers.NewChangeCityHandler(deps))
	b.router.RegisterIntent(intent.ChangeLanguage, handlers.NewChangeLanguageHandler(deps))
	b.router.RegisterIntent(intent.Help, handlers.NewHelpHandler(deps, isAdmin))

	b.dispatcher.RegisterStateHandler(state.StateAwaitingCity, handlers.NewCityInputHandler(deps))

	b.router.SetDefault(handlers.NewDefaultHandler(deps))
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

// telegramSender adapts telebot.Bot to the broadcast.Sender interface.
type telegramSender struct {
	bot *telebot.Bot
}

func (s *telegramSender) SendTo(userID int64, text string) error {
	_, err := s.bot.Send(&telebot.User{ID: userID}, text, telebot.ModeHTML)
	return err
}
