package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/anikeev-v/pogodnik/internal/i18n"
)

// MainMenu builds a localized reply keyboard for the bot main menu.
func MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	weatherBtn := markup.Text(lookup("buttons.weather"))
	forecastBtn := markup.Text(lookup("buttons.forecast"))
	changeCityBtn := markup.Text(lookup("buttons.change_city"))
	changeLanguageBtn := markup.Text(lookup("buttons.change_language"))
	helpBtn := markup.Text(lookup("buttons.help"))

	markup.Reply(
		markup.Row(weatherBtn, forecastBtn),
		markup.Row(changeCityBtn, changeLanguageBtn),
		markup.Row(helpBtn),
	)

	return markup
}
