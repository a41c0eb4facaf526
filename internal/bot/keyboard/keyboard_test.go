package keyboard_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anikeev-v/pogodnik/internal/bot/keyboard"
)

type mockTranslator struct {
	translations map[string]string
}

func (m *mockTranslator) T(key string) string {
	if v, ok := m.translations[key]; ok {
		return v
	}
	return key
}

func (m *mockTranslator) Tf(key string, args ...any) string {
	return fmt.Sprintf(m.T(key), args...)
}

func (m *mockTranslator) Lang() string { return "en" }

func TestMainMenu(t *testing.T) {
	translator := &mockTranslator{
		translations: map[string]string{
			"buttons.weather":         "Weather now",
			"buttons.forecast":        "Forecast",
			"buttons.change_city":     "Change city",
			"buttons.change_language": "Change language",
			"buttons.help":            "Help",
		},
	}

	markup := keyboard.MainMenu(translator)

	assert.True(t, markup.ResizeKeyboard)
	assert.False(t, markup.OneTimeKeyboard)

	expectedRows := [][]string{
		{"Weather now", "Forecast"},
		{"Change city", "Change language"},
		{"Help"},
	}

	require.Len(t, markup.ReplyKeyboard, len(expectedRows))

	for i, row := range expectedRows {
		require.Len(t, markup.ReplyKeyboard[i], len(row))
		for j, text := range row {
			assert.Equal(t, text, markup.ReplyKeyboard[i][j].Text)
		}
	}
}

func TestMainMenu_NilTranslatorFallsBackToKeys(t *testing.T) {
	markup := keyboard.MainMenu(nil)

	require.NotEmpty(t, markup.ReplyKeyboard)
	assert.Equal(t, "buttons.weather", markup.ReplyKeyboard[0][0].Text)
}

func TestLanguagePicker(t *testing.T) {
	markup := keyboard.LanguagePicker()

	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)

	assert.Equal(t, "Русский", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "lang_ru", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "English", markup.InlineKeyboard[0][1].Text)
	assert.Equal(t, "lang_en", markup.InlineKeyboard[0][1].Data)
}

func TestInlineKeyboardBuilder_Encoder(t *testing.T) {
	markup := keyboard.NewInlineKeyboard().
		AddRow(keyboard.InlineButton{Text: "A", Unique: "pick", Data: "ru"}).
		Build(func(unique, data string) string { return unique + ":" + data })

	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "pick:ru", markup.InlineKeyboard[0][0].Data)
}
