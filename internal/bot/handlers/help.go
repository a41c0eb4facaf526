package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// NewHelpHandler sends the command reference. Administrators additionally see
// the admin command section.
func NewHelpHandler(d *Deps, isAdmin func(userID int64) bool) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		userID := c.Sender().ID
		tr := d.Translator(userID)

		text := tr.T("help.text")
		if isAdmin != nil && isAdmin(userID) {
			text += tr.T("help.admin")
		}

		return c.Send(text, telebot.ModeHTML)
	}
}

// NewDefaultHandler answers free text that matched no command, state, or
// button label.
func NewDefaultHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		tr := d.Translator(c.Sender().ID)
		return c.Send(tr.T("use_buttons"), telebot.ModeHTML)
	}
}
