package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anikeev-v/pogodnik/internal/i18n"
)

func testManager(t *testing.T) *i18n.Manager {
	t.Helper()

	dir := t.TempDir()

	ru := `buttons:
  weather: "Узнать погоду 🌤️"
  forecast: "Прогноз на 4 дня 📅"
  change_city: "Сменить город 🏙️"
  change_language: "Сменить язык 🌐"
  help: "Помощь ❓"
`
	en := `buttons:
  weather: "Get weather 🌤️"
  forecast: "4-day forecast 📅"
  change_city: "Change city 🏙️"
  change_language: "Change language 🌐"
  help: "Help ❓"
`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ru.yaml"), []byte(ru), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(en), 0o644))

	m, err := i18n.LoadDir(dir, "ru")
	require.NoError(t, err)

	return m
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testManager(t))

	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"russian weather button", "Узнать погоду 🌤️", Weather},
		{"english weather button", "Get weather 🌤️", Weather},
		{"weather command", "/weather", Weather},
		{"forecast command", "/forecast", Forecast},
		{"russian forecast button", "Прогноз на 4 дня 📅", Forecast},
		{"change city button", "Change city 🏙️", ChangeCity},
		{"change city command", "/change_city", ChangeCity},
		{"change language button", "Сменить язык 🌐", ChangeLanguage},
		{"help command with mention", "/help@pogodnik_bot", Help},
		{"help button", "Помощь ❓", Help},
		{"padded command", "  /weather  ", Weather},
		{"free text", "Saint Petersburg", Unknown},
		{"empty", "", Unknown},
		{"unrelated command", "/start", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.text))
		})
	}
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "weather", Weather.String())
	assert.Equal(t, "forecast", Forecast.String())
	assert.Equal(t, "change_city", ChangeCity.String())
	assert.Equal(t, "change_language", ChangeLanguage.String())
	assert.Equal(t, "help", Help.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Intent(42).String())
}
