package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/internal/profile"
	"github.com/anikeev-v/pogodnik/internal/weather"
)

// NewWeatherHandler reports the current weather for the user's saved city.
func NewWeatherHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		city := d.Store.Profile(userID).City
		if city == "" {
			return c.Send(tr.T("no_city"), telebot.ModeHTML)
		}

		if err := d.Store.IncrementStat(profile.StatWeatherRequests); err != nil {
			d.Log.Error("failed to record weather request", slog.Any("error", err))
		}

		if err := c.Send(tr.T("weather_request"), telebot.ModeHTML); err != nil {
			return err
		}

		// The city was validated when saved, so failures here are mostly
		// transient provider trouble and worth a retry.
		var current *weather.Current
		err := apperrors.WithRetry(context.Background(), func() error {
			var lookupErr error
			current, lookupErr = d.Weather.Current(context.Background(), city, tr.Lang())
			return lookupErr
		})
		if err != nil {
			return err
		}

		return c.Send(weather.FormatCurrent(tr, current), telebot.ModeHTML)
	}
}

// NewForecastHandler reports the short-range forecast for the user's saved city.
func NewForecastHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		city := d.Store.Profile(userID).City
		if city == "" {
			return c.Send(tr.T("no_city"), telebot.ModeHTML)
		}

		if err := d.Store.IncrementStat(profile.StatForecastRequests); err != nil {
			d.Log.Error("failed to record forecast request", slog.Any("error", err))
		}

		if err := c.Send(tr.T("forecast_request"), telebot.ModeHTML); err != nil {
			return err
		}

		var forecast *weather.Forecast
		err := apperrors.WithRetry(context.Background(), func() error {
			var lookupErr error
			forecast, lookupErr = d.Weather.Forecast(context.Background(), city, tr.Lang())
			return lookupErr
		})
		if err != nil {
			return err
		}

		return c.Send(weather.FormatForecast(tr, forecast), telebot.ModeHTML)
	}
}
