// Package intent normalizes inbound message text to language-independent intents.
package intent

import (
	"strings"

	"github.com/anikeev-v/pogodnik/internal/i18n"
)

// Intent is an abstract classification of a user action, independent of the
// display language the user triggered it in.
type Intent int

const (
	// Unknown means the text matched no button label or command.
	Unknown Intent = iota
	// Weather requests the current weather for the saved city.
	Weather
	// Forecast requests the short-range forecast for the saved city.
	Forecast
	// ChangeCity starts city entry.
	ChangeCity
	// ChangeLanguage opens the language picker.
	ChangeLanguage
	// Help requests the command list.
	Help
)

// String returns a stable label, used for logs and metrics.
func (i Intent) String() string {
	switch i {
	case Weather:
		return "weather"
	case Forecast:
		return "forecast"
	case ChangeCity:
		return "change_city"
	case ChangeLanguage:
		return "change_language"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// buttonKeys maps localization keys to intents. The resolver expands each key
// for every loaded language, so adding a catalog never touches handler wiring.
var buttonKeys = map[string]Intent{
	"buttons.weather":         Weather,
	"buttons.forecast":        Forecast,
	"buttons.change_city":     ChangeCity,
	"buttons.change_language": ChangeLanguage,
	"buttons.help":            Help,
}

var commands = map[string]Intent{
	"/weather":         Weather,
	"/forecast":        Forecast,
	"/change_city":     ChangeCity,
	"/change_language": ChangeLanguage,
	"/help":            Help,
}

// Resolver maps inbound text to an Intent using a table built from the active
// localization set.
type Resolver struct {
	byText map[string]Intent
}

// NewResolver builds a lookup table covering every loaded language's button
// labels plus the slash command aliases.
func NewResolver(translations *i18n.Manager) *Resolver {
	byText := make(map[string]Intent, len(commands)+len(buttonKeys)*2)

	for cmd, in := range commands {
		byText[cmd] = in
	}

	if translations != nil {
		for _, lang := range translations.Languages() {
			tr := translations.Translator(lang)
			for key, in := range buttonKeys {
				if label := tr.T(key); label != key {
					byText[label] = in
				}
			}
		}
	}

	return &Resolver{byText: byText}
}

// Resolve classifies inbound message text. Commands are matched without a
// trailing @botname mention.
func (r *Resolver) Resolve(text string) Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown
	}

	if strings.HasPrefix(text, "/") {
		if at := strings.IndexByte(text, '@'); at > 0 {
			text = text[:at]
		}
	}

	if in, ok := r.byText[text]; ok {
		return in
	}

	return Unknown
}
