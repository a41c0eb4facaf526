package weather

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anikeev-v/pogodnik/internal/i18n"
)

// FormatCurrent renders a current-weather record as a localized chat message.
func FormatCurrent(tr i18n.Translator, current *Current) string {
	if current == nil {
		return ""
	}

	return tr.Tf("weather.report",
		current.Location,
		current.Temp,
		current.FeelsLike,
		capitalize(current.Description),
		current.Humidity,
		current.WindSpeed,
	)
}

// FormatForecast renders a forecast record as a localized chat message.
func FormatForecast(tr i18n.Translator, forecast *Forecast) string {
	if forecast == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(tr.Tf("forecast.header", forecast.Location))

	for _, entry := range forecast.Entries {
		sb.WriteString("\n")
		sb.WriteString(tr.Tf("forecast.entry",
			entry.Timestamp,
			entry.Temp,
			entry.Description,
			entry.Humidity,
		))
	}

	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
