// Package bot adapts the registration dialog to the Telegram transport:
// commands, callback buttons, and free-text messages are translated into
// engine events and engine replies are rendered back as Telegram messages.
package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/Famer-0/Tg-bot/config"
	"github.com/Famer-0/Tg-bot/core/state"
	"github.com/Famer-0/Tg-bot/core/telegram"
	"github.com/Famer-0/Tg-bot/core/telegram/callbacks"
	"github.com/Famer-0/Tg-bot/core/telegram/commands"
	tghelpers "github.com/Famer-0/Tg-bot/core/telegram/helpers"
	"github.com/Famer-0/Tg-bot/core/telegram/keyboard"
	"github.com/Famer-0/Tg-bot/core/telegram/middleware"
	"github.com/Famer-0/Tg-bot/flow"
	"github.com/Famer-0/Tg-bot/storage"
)

const msgAccessDenied = "🚫 Доступ запрещён"

// Bot wires dialog handlers into the shared telegram runtime.
type Bot struct {
	cfg      *config.Config
	engine   *flow.Engine
	courses  *storage.Courses
	sessions state.Manager
	registry *telegram.Registry
}

// New builds the bot and registers its commands and callbacks.
func New(cfg *config.Config, engine *flow.Engine, courses *storage.Courses, sessions state.Manager) *Bot {
	b := &Bot{
		cfg:      cfg,
		engine:   engine,
		courses:  courses,
		sessions: sessions,
		registry: telegram.NewRegistry(),
	}

	b.registry.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Начать регистрацию на курс",
	})
	b.registry.RegisterCommand("/admin", commands.Command{
		Handler:     b.handleAdminMenu,
		Description: "Меню администратора",
		AdminOnly:   true,
	})

	_ = b.registry.RegisterCallback(flow.ActionCourse, b.handleCourseSelected)
	_ = b.registry.RegisterCallback(flow.ActionEdit, b.handleEditName)
	_ = b.registry.RegisterCallback(flow.ActionConfirm, b.handleConfirmName)
	_ = b.registry.RegisterCallback(cbAdminAddCourse, b.handleAdminAddCourse)

	return b
}

// Registry exposes the command/callback registry for the runtime.
func (b *Bot) Registry() *telegram.Registry {
	return b.registry
}

// Routes returns all endpoint bindings for telegram.RunTelegram.
func (b *Bot) Routes() []telegram.Route {
	adminOpts := middleware.AdminOptions{
		AdminID:  b.cfg.Telegram.AdminID,
		OnReject: accessDenied,
	}

	routes := make([]telegram.Route, 0, len(b.registry.Commands())+2)
	for name, cmd := range b.registry.Commands() {
		routes = append(routes, telegram.Route{
			Endpoint: name,
			Handler:  middleware.WithAdminCheck(adminOpts, cmd.AdminOnly, cmd.Handler),
		})
	}
	routes = append(routes,
		telegram.Route{Endpoint: tele.OnText, Handler: b.handleText},
		telegram.Route{Endpoint: tele.OnCallback, Handler: b.handleCallback},
	)
	return routes
}

// handleCallback dispatches raw callback updates through the registry.
func (b *Bot) handleCallback(c tele.Context) error {
	key := callbacks.CallbackKey(c)
	if handler, ok := b.registry.GetCallback(key); ok {
		return handler(c)
	}
	return b.registry.CallbackNotFound()(c)
}

func accessDenied(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgAccessDenied, ShowAlert: true})
	}
	return tghelpers.SendText(c, msgAccessDenied)
}

// respond renders one engine reply onto the Telegram transport.
func respond(c tele.Context, reply flow.Reply) error {
	if reply.Empty() {
		return nil
	}
	if c.Callback() != nil {
		if reply.Alert {
			return c.Respond(&tele.CallbackResponse{Text: reply.Text, ShowAlert: true})
		}
		_ = c.Respond()
	}

	var markup *tele.ReplyMarkup
	if len(reply.Options) > 0 {
		btns := make([]keyboard.InlineBtn, 0, len(reply.Options))
		for _, opt := range reply.Options {
			btns = append(btns, keyboard.InlineBtn{
				Text:   opt.Label,
				Unique: opt.Action,
				Data:   opt.Data,
			})
		}
		markup = keyboard.InlineButtons(btns)
	}

	if reply.Edit && c.Callback() != nil {
		return tghelpers.EditOrSend(c, reply.Text, markup)
	}
	return tghelpers.SendWithMarkup(c, reply.Text, markup)
}
