// Package profile owns the persisted per-user profiles and aggregate usage counters.
package profile

// Language is a supported interface language.
type Language string

const (
	// LanguageRU is the default interface language.
	LanguageRU Language = "ru"
	// LanguageEN is the English interface language.
	LanguageEN Language = "en"
)

// ParseLanguage validates a raw language code.
func ParseLanguage(raw string) (Language, bool) {
	switch Language(raw) {
	case LanguageRU:
		return LanguageRU, true
	case LanguageEN:
		return LanguageEN, true
	default:
		return "", false
	}
}

// Profile is a single user's persisted record.
type Profile struct {
	City     string   `json:"city,omitempty"`
	Language Language `json:"language,omitempty"`
	Banned   bool     `json:"banned,omitempty"`
}

// StatName identifies a monotonic usage counter.
type StatName string

const (
	// StatWeatherRequests counts current weather lookups.
	StatWeatherRequests StatName = "weather_requests"
	// StatForecastRequests counts forecast lookups.
	StatForecastRequests StatName = "forecast_requests"
)

// Stats is a point-in-time snapshot of the aggregate usage counters.
// TotalUsers and ActiveUsers are derived from the profile map on every read.
type Stats struct {
	TotalUsers       int
	ActiveUsers      int
	WeatherRequests  int
	ForecastRequests int
}
