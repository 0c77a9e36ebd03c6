// Package keyboard builds inline keyboards from plain button descriptions.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button: visible text, callback unique, payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtons lays every button out on its own row, the layout used for
// course pickers and confirmation prompts.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([][]tele.InlineButton, len(buttons))
	for i, btn := range buttons {
		rows[i] = []tele.InlineButton{*markup.Data(btn.Text, btn.Unique, btn.Data).Inline()}
	}
	markup.InlineKeyboard = rows
	return markup
}
