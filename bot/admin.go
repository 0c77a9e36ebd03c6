package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/Famer-0/Tg-bot/core/logger"
	"github.com/Famer-0/Tg-bot/core/state"
	tghelpers "github.com/Famer-0/Tg-bot/core/telegram/helpers"
	"github.com/Famer-0/Tg-bot/core/telegram/keyboard"
	"github.com/Famer-0/Tg-bot/storage"
	"log/slog"
)

// Admin course-creation dialog. It shares the session manager with the
// registration flow; the prefix keeps the two state spaces apart.
const (
	adminStatePrefix = "admin_"
	stateAdminCode   = "admin_code"
	stateAdminName   = "admin_name"

	tempAdminCode = "admin_code"

	cbAdminAddCourse = "add_course"
)

const (
	msgAdminMenu      = "Меню администратора:"
	btnAddCourse      = "Добавить курс"
	msgAskCourseCode  = "Введите код курса:"
	msgAskCourseName  = "Введите название курса:"
	msgBadCourseCode  = "❌ Код курса: одно слово из букв и цифр"
	msgCourseExists   = "❌ Курс с таким кодом уже существует"
	msgCourseAddedFmt = "✅ Курс добавлен: %s"
	msgAdminFailed    = "⚠️ Не удалось добавить курс, попробуйте ещё раз"
)

func (b *Bot) isAdmin(c tele.Context) bool {
	sender := c.Sender()
	return sender != nil && b.cfg.Telegram.AdminID != 0 && sender.ID == b.cfg.Telegram.AdminID
}

func (b *Bot) handleAdminMenu(c tele.Context) error {
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnAddCourse, Unique: cbAdminAddCourse},
	})
	return tghelpers.SendWithMarkup(c, msgAdminMenu, markup)
}

func (b *Bot) handleAdminAddCourse(c tele.Context) error {
	if !b.isAdmin(c) {
		return accessDenied(c)
	}
	userID := c.Sender().ID
	b.sessions.Clear(userID)
	b.sessions.SetState(userID, stateAdminCode)
	_ = c.Respond()
	return tghelpers.EditOrSend(c, msgAskCourseCode, nil)
}

func validCourseCode(raw string) (string, bool) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if code == "" || len(code) > 32 {
		return code, false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return code, false
		}
	}
	return code, true
}

func (b *Bot) handleAdminText(c tele.Context) error {
	if !b.isAdmin(c) {
		b.sessions.Clear(c.Sender().ID)
		return accessDenied(c)
	}

	ctx := tghelpers.WithHandler(c, "admin")
	userID := c.Sender().ID

	switch b.sessions.GetState(userID) {
	case stateAdminCode:
		code, ok := validCourseCode(c.Text())
		if !ok {
			return tghelpers.SendText(c, msgBadCourseCode)
		}
		b.sessions.SetTemp(userID, tempAdminCode, code)
		b.sessions.SetState(userID, stateAdminName)
		return tghelpers.SendText(c, msgAskCourseName)

	case stateAdminName:
		name := strings.TrimSpace(c.Text())
		if name == "" {
			return tghelpers.SendText(c, msgAskCourseName)
		}
		code, _ := state.TempString(b.sessions, userID, tempAdminCode)
		err := b.courses.Add(ctx, storage.Course{Code: code, Name: name})
		switch {
		case errors.Is(err, storage.ErrCourseExists):
			b.sessions.SetState(userID, stateAdminCode)
			return tghelpers.SendText(c, msgCourseExists)
		case err != nil:
			logger.Error(ctx, "bot", "admin.add_course.failed",
				slog.String("course", code),
				slog.String("err", err.Error()),
			)
			return tghelpers.SendText(c, msgAdminFailed)
		}
		b.sessions.Clear(userID)
		logger.Info(ctx, "bot", "admin.add_course",
			slog.String("course", code),
		)
		return tghelpers.SendText(c, fmt.Sprintf(msgCourseAddedFmt, name))
	}
	return nil
}
