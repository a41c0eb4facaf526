package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/internal/i18n"
)

const currentFixture = `{
	"name": "Paris",
	"weather": [{"description": "scattered clouds"}],
	"main": {"temp": 18.4, "feels_like": 17.9, "humidity": 64},
	"wind": {"speed": 3.6},
	"cod": 200
}`

const forecastFixture = `{
	"city": {"name": "Paris"},
	"list": [
		{
			"dt_txt": "2026-08-31 12:00:00",
			"weather": [{"description": "light rain"}],
			"main": {"temp": 17.1, "humidity": 71}
		},
		{
			"dt_txt": "2026-08-31 15:00:00",
			"weather": [{"description": "overcast clouds"}],
			"main": {"temp": 16.2, "humidity": 75}
		}
	]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
	}, testLogger())
}

func TestClient_Current(t *testing.T) {
	var gotQuery map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/weather", r.URL.Path)
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"lang":  r.URL.Query().Get("lang"),
			"units": r.URL.Query().Get("units"),
			"appid": r.URL.Query().Get("appid"),
		}
		io.WriteString(w, currentFixture)
	})

	current, err := client.Current(context.Background(), "Paris", "en")
	require.NoError(t, err)

	assert.Equal(t, "Paris", current.Location)
	assert.InDelta(t, 18.4, current.Temp, 0.01)
	assert.InDelta(t, 17.9, current.FeelsLike, 0.01)
	assert.Equal(t, "scattered clouds", current.Description)
	assert.Equal(t, 64, current.Humidity)
	assert.InDelta(t, 3.6, current.WindSpeed, 0.01)

	assert.Equal(t, map[string]string{
		"q":     "Paris",
		"lang":  "en",
		"units": "metric",
		"appid": "test-key",
	}, gotQuery)
}

func TestClient_CurrentUnknownCity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"cod":"404","message":"city not found"}`)
	})

	_, err := client.Current(context.Background(), "Nowhereville", "en")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "weather_error", appErr.UserMessageKey)
}

func TestClient_CurrentMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"name": "Paris", "weather": [`)
	})

	_, err := client.Current(context.Background(), "Paris", "en")
	assert.Error(t, err)
}

func TestClient_CurrentNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/"}, testLogger())
	srv.Close()

	_, err := client.Current(context.Background(), "Paris", "en")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "weather_error", appErr.UserMessageKey)
}

func TestClient_Forecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forecast", r.URL.Path)
		require.Equal(t, "4", r.URL.Query().Get("cnt"))
		io.WriteString(w, forecastFixture)
	})

	forecast, err := client.Forecast(context.Background(), "Paris", "ru")
	require.NoError(t, err)

	assert.Equal(t, "Paris", forecast.Location)
	require.Len(t, forecast.Entries, 2)
	assert.Equal(t, "2026-08-31 12:00:00", forecast.Entries[0].Timestamp)
	assert.Equal(t, "light rain", forecast.Entries[0].Description)
	assert.Equal(t, 71, forecast.Entries[0].Humidity)
}

func repositoryTranslations(t *testing.T) *i18n.Manager {
	t.Helper()

	m, err := i18n.LoadDir(filepath.Join("..", "..", "locales"), "ru")
	require.NoError(t, err)

	return m
}

func TestFormatCurrent(t *testing.T) {
	current := &Current{
		Location:    "Paris",
		Temp:        18.4,
		FeelsLike:   17.9,
		Description: "scattered clouds",
		Humidity:    64,
		WindSpeed:   3.6,
	}

	text := FormatCurrent(repositoryTranslations(t).Translator("en"), current)

	assert.Contains(t, text, "Weather in Paris")
	assert.Contains(t, text, "18.4°C")
	assert.Contains(t, text, "feels like 17.9°C")
	assert.Contains(t, text, "Scattered clouds")
	assert.Contains(t, text, "64%")
	assert.Contains(t, text, "3.6 m/s")
}

func TestFormatForecast(t *testing.T) {
	forecast := &Forecast{
		Location: "Омск",
		Entries: []ForecastEntry{
			{Timestamp: "2026-08-31 12:00:00", Temp: 17.1, Description: "небольшой дождь", Humidity: 71},
		},
	}

	text := FormatForecast(repositoryTranslations(t).Translator("ru"), forecast)

	assert.Contains(t, text, "Прогноз погоды в Омск")
	assert.Contains(t, text, "2026-08-31 12:00:00")
	assert.Contains(t, text, "17.1°C, небольшой дождь")
	assert.Contains(t, text, "Влажность: 71%")
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ясно", capitalize("ясно"))
	assert.Equal(t, "Clear sky", capitalize("clear sky"))
	assert.Equal(t, "", capitalize(""))
}
