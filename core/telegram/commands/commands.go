// Package commands declares the metadata attached to each registered bot
// command.
package commands

import tele "gopkg.in/telebot.v4"

// Command binds a handler to the command menu entry that exposes it.
// AdminOnly commands are wrapped with the admin gate and hidden from the
// public menu; Hidden ones just stay out of the menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}
