package bot

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/Famer-0/Tg-bot/core/logger"
	"github.com/Famer-0/Tg-bot/core/telegram/callbacks"
	tghelpers "github.com/Famer-0/Tg-bot/core/telegram/helpers"
	"github.com/Famer-0/Tg-bot/flow"
	"log/slog"
)

func (b *Bot) handleStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	reply, err := b.engine.Start(ctx, c.Sender().ID)
	if err != nil {
		logger.Error(ctx, "bot", "dialog.start.failed",
			slog.String("err", err.Error()),
		)
	}
	return respond(c, reply)
}

// handleText feeds free-text messages into whichever dialog owns the
// user's session.
func (b *Bot) handleText(c tele.Context) error {
	userID := c.Sender().ID
	if strings.HasPrefix(b.sessions.GetState(userID), adminStatePrefix) {
		return b.handleAdminText(c)
	}

	ctx := tghelpers.WithHandler(c, "text")
	reply, err := b.engine.Handle(ctx, userID, flow.Text(c.Text()))
	if err != nil {
		logger.Error(ctx, "bot", "dialog.step.failed",
			slog.String("err", err.Error()),
		)
	}
	return respond(c, reply)
}

func (b *Bot) handleCourseSelected(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "course")
	code := callbacks.CallbackPayload(c)
	reply, err := b.engine.Handle(ctx, c.Sender().ID, flow.Select(flow.ActionCourse, code))
	if err != nil {
		logger.Error(ctx, "bot", "dialog.step.failed",
			slog.String("course", code),
			slog.String("err", err.Error()),
		)
	}
	return respond(c, reply)
}

func (b *Bot) handleEditName(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "edit_name")
	reply, err := b.engine.Handle(ctx, c.Sender().ID, flow.Select(flow.ActionEdit, ""))
	if err != nil {
		logger.Error(ctx, "bot", "dialog.step.failed",
			slog.String("err", err.Error()),
		)
	}
	return respond(c, reply)
}

func (b *Bot) handleConfirmName(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "confirm_name")
	reply, err := b.engine.Handle(ctx, c.Sender().ID, flow.Select(flow.ActionConfirm, ""))
	if err != nil {
		logger.Error(ctx, "bot", "dialog.step.failed",
			slog.String("err", err.Error()),
		)
	}
	return respond(c, reply)
}
