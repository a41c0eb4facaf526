// Package weather integrates the OpenWeatherMap API as the lookup adapter.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/anikeev-v/pogodnik/internal/errors"
	"github.com/anikeev-v/pogodnik/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/"
	defaultTimeout = 10 * time.Second

	// forecastDays bounds the forecast to the next 4 entries.
	forecastDays = 4
)

// Current is a normalized current-weather record.
type Current struct {
	Location    string
	Temp        float64
	FeelsLike   float64
	Description string
	Humidity    int
	WindSpeed   float64
}

// ForecastEntry is a single dated forecast record.
type ForecastEntry struct {
	Timestamp   string
	Temp        float64
	Description string
	Humidity    int
}

// Forecast is a normalized forecast response.
type Forecast struct {
	Location string
	Entries  []ForecastEntry
}

// Config carries the provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the OpenWeatherMap HTTP API. Network errors, non-success
// statuses and malformed responses all collapse into a single failure signal:
// callers only need to know that the lookup did not produce a record.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *apperrors.CircuitBreaker
	log        *slog.Logger
}

// NewClient builds a weather client with a bounded request timeout.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		breaker:    apperrors.NewCircuitBreaker(),
		log:        log,
	}
}

// Current fetches the current weather for a city. A successful response is
// also how city validity is established; there is no separate geocoding call.
func (c *Client) Current(ctx context.Context, city, lang string) (*Current, error) {
	var payload currentPayload

	err := c.get(ctx, "weather", url.Values{
		"q":     {city},
		"lang":  {lang},
		"units": {"metric"},
	}, &payload)
	if err != nil {
		metrics.RecordWeatherLookup("current", "error")
		return nil, apperrors.NewWeatherAPIError("weather_error", err)
	}

	if len(payload.Weather) == 0 {
		metrics.RecordWeatherLookup("current", "error")
		return nil, apperrors.NewWeatherAPIError("weather_error",
			fmt.Errorf("response for %q carries no weather block", city))
	}

	metrics.RecordWeatherLookup("current", "ok")

	return &Current{
		Location:    payload.Name,
		Temp:        payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Description: payload.Weather[0].Description,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}, nil
}

// Forecast fetches the short-range forecast for a city.
func (c *Client) Forecast(ctx context.Context, city, lang string) (*Forecast, error) {
	var payload forecastPayload

	err := c.get(ctx, "forecast", url.Values{
		"q":     {city},
		"lang":  {lang},
		"units": {"metric"},
		"cnt":   {fmt.Sprintf("%d", forecastDays)},
	}, &payload)
	if err != nil {
		metrics.RecordWeatherLookup("forecast", "error")
		return nil, apperrors.NewWeatherAPIError("forecast_error", err)
	}

	metrics.RecordWeatherLookup("forecast", "ok")

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		description := ""
		if len(item.Weather) > 0 {
			description = item.Weather[0].Description
		}

		entries = append(entries, ForecastEntry{
			Timestamp:   item.DtTxt,
			Temp:        item.Main.Temp,
			Description: description,
			Humidity:    item.Main.Humidity,
		})
	}

	return &Forecast{
		Location: payload.City.Name,
		Entries:  entries,
	}, nil
}

// HealthCheck reports whether the provider endpoint answers at all. Any HTTP
// response counts; only a transport failure marks the provider down.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"weather", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather API unreachable: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.breaker.Call(func() error {
		query.Set("appid", c.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+query.Encode(), nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			c.log.Warn("weather API returned non-success status",
				slog.String("endpoint", endpoint),
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(body)))
			return fmt.Errorf("%s: unexpected status %d", endpoint, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", endpoint, err)
		}

		return nil
	})
}

type currentPayload struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastPayload struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		DtTxt   string `json:"dt_txt"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
	} `json:"list"`
}
