package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Famer-0/Tg-bot/core/logger"
	"github.com/Famer-0/Tg-bot/core/state"
	"github.com/Famer-0/Tg-bot/storage"
	"log/slog"
)

// Dialog states. The reg_ prefix keeps registration sessions apart from
// other dialogs sharing the same session manager.
const (
	StateCourse  = "reg_course"
	StateName    = "reg_name"
	StateConfirm = "reg_confirm"
	StateEmail   = "reg_email"
)

// Option actions understood by Handle.
const (
	ActionCourse  = "course"
	ActionEdit    = "edit_name"
	ActionConfirm = "confirm_name"
)

const (
	tempCourse = "course"
	tempName   = "name"
)

// User-facing dialog texts.
const (
	MsgWelcome        = "👋 Добро пожаловать в нашу школу программирования!\nВыберите курс:"
	MsgUnknownCourse  = "❌ Некорректный курс"
	MsgAskName        = "📘 Вы выбрали курс: %s\nВведите своё имя:"
	MsgBadName        = "❌ Имя должно быть от 2 до 50 символов"
	MsgConfirm        = "Вы ввели имя: %s\n🔹 Курс: %s\n\n✅ Подтвердите ввод"
	MsgAskNewName     = "Введите новое имя:"
	MsgAskEmail       = "📧 Введите свой email для регистрации:"
	MsgBadEmail       = "❌ Неверный формат email"
	MsgEmailTaken     = "❌ Эта почта уже используется другим пользователем"
	MsgEmailUsed      = "❌ Вы уже использовали эту почту для другой регистрации"
	MsgAlreadyOnMask  = "⚠️ Вы уже зарегистрированы на %s"
	MsgSuccess        = "✅ Регистрация успешна!"
	MsgInternal       = "⚠️ Что-то пошло не так, попробуйте ещё раз"
	BtnEditName       = "🔄 Изменить имя"
	BtnConfirmName    = "➡️ Продолжить"
)

// Catalog is the course lookup surface the engine needs.
type Catalog interface {
	List(ctx context.Context) ([]storage.Course, error)
	Get(ctx context.Context, code string) (storage.Course, bool, error)
}

// Registrations is the enrollment surface the engine needs.
type Registrations interface {
	Register(ctx context.Context, reg storage.Registration) error
	Registered(ctx context.Context, telegramID int64, course string) (bool, error)
	RegisteredCourses(ctx context.Context, telegramID int64) ([]string, error)
	EmailOwner(ctx context.Context, email string) (int64, bool, error)
}

// Notifier delivers the post-registration notice. Implementations must not
// block the caller.
type Notifier interface {
	Notify(ctx context.Context, email, courseCode, courseName string)
}

// Engine drives the per-user registration dialog. Events for one user are
// processed strictly in arrival order; different users proceed independently.
type Engine struct {
	sessions state.Manager
	catalog  Catalog
	regs     Registrations
	notifier Notifier

	locks sync.Map // userID -> *sync.Mutex
}

// NewEngine wires the dialog engine.
func NewEngine(sessions state.Manager, catalog Catalog, regs Registrations, notifier Notifier) *Engine {
	return &Engine{
		sessions: sessions,
		catalog:  catalog,
		regs:     regs,
		notifier: notifier,
	}
}

func (e *Engine) lock(userID int64) func() {
	mu, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Start opens a fresh dialog for the user, discarding any previous session,
// and returns the course selection prompt.
func (e *Engine) Start(ctx context.Context, userID int64) (Reply, error) {
	defer e.lock(userID)()

	courses, err := e.catalog.List(ctx)
	if err != nil {
		return Reply{Text: MsgInternal}, fmt.Errorf("dialog start: %w", err)
	}

	e.sessions.Clear(userID)
	e.sessions.SetState(userID, StateCourse)

	opts := make([]Option, 0, len(courses))
	for _, c := range courses {
		opts = append(opts, Option{Label: c.Name, Action: ActionCourse, Data: c.Code})
	}
	logger.Debug(ctx, "flow", "dialog.start",
		slog.Int64("user_id", userID),
		slog.Int("count", len(opts)),
	)
	return Reply{Text: MsgWelcome, Options: opts}, nil
}

// Active reports whether the user currently has a registration dialog open.
func (e *Engine) Active(userID int64) bool {
	return e.sessions.HasState(userID)
}

// Handle advances the user's dialog with one inbound event and returns the
// prompt to show. An empty reply means the event did not fit the current
// state and should be ignored by the transport.
func (e *Engine) Handle(ctx context.Context, userID int64, in Input) (Reply, error) {
	defer e.lock(userID)()

	switch e.sessions.GetState(userID) {
	case StateCourse:
		return e.handleCourse(ctx, userID, in)
	case StateName:
		return e.handleName(ctx, userID, in)
	case StateConfirm:
		return e.handleConfirm(ctx, userID, in)
	case StateEmail:
		return e.handleEmail(ctx, userID, in)
	}
	return Reply{}, nil
}

func (e *Engine) handleCourse(ctx context.Context, userID int64, in Input) (Reply, error) {
	if in.Kind != KindSelect || in.Action != ActionCourse {
		return Reply{}, nil
	}

	course, ok, err := e.catalog.Get(ctx, in.Value)
	if err != nil {
		return Reply{Text: MsgInternal}, fmt.Errorf("course lookup: %w", err)
	}
	if !ok {
		return Reply{Text: MsgUnknownCourse, Alert: true}, nil
	}

	enrolled, err := e.regs.RegisteredCourses(ctx, userID)
	if err != nil {
		return Reply{Text: MsgInternal}, fmt.Errorf("registered courses: %w", err)
	}
	for _, c := range enrolled {
		if c == course.Code {
			return Reply{Text: fmt.Sprintf(MsgAlreadyOnMask, course.Name), Alert: true}, nil
		}
	}

	e.sessions.SetTemp(userID, tempCourse, course.Code)
	e.sessions.SetState(userID, StateName)
	logger.Debug(ctx, "flow", "dialog.course",
		slog.Int64("user_id", userID),
		slog.String("course", course.Code),
		slog.String("state", StateName),
	)
	return Reply{Text: fmt.Sprintf(MsgAskName, course.Name), Edit: true}, nil
}

func (e *Engine) handleName(ctx context.Context, userID int64, in Input) (Reply, error) {
	if in.Kind != KindText {
		return Reply{}, nil
	}

	name, ok := ValidName(in.Value)
	if !ok {
		return Reply{Text: MsgBadName}, nil
	}

	code, _ := state.TempString(e.sessions, userID, tempCourse)
	courseName := code
	if course, found, err := e.catalog.Get(ctx, code); err == nil && found {
		courseName = course.Name
	}

	e.sessions.SetTemp(userID, tempName, name)
	e.sessions.SetState(userID, StateConfirm)
	logger.Debug(ctx, "flow", "dialog.name",
		slog.Int64("user_id", userID),
		slog.String("state", StateConfirm),
	)
	return Reply{
		Text: fmt.Sprintf(MsgConfirm, name, courseName),
		Options: []Option{
			{Label: BtnEditName, Action: ActionEdit},
			{Label: BtnConfirmName, Action: ActionConfirm},
		},
	}, nil
}

func (e *Engine) handleConfirm(ctx context.Context, userID int64, in Input) (Reply, error) {
	if in.Kind != KindSelect {
		return Reply{}, nil
	}
	switch in.Action {
	case ActionEdit:
		e.sessions.ClearTemp(userID, tempName)
		e.sessions.SetState(userID, StateName)
		return Reply{Text: MsgAskNewName, Edit: true}, nil
	case ActionConfirm:
		e.sessions.SetState(userID, StateEmail)
		return Reply{Text: MsgAskEmail, Edit: true}, nil
	}
	return Reply{}, nil
}

func (e *Engine) handleEmail(ctx context.Context, userID int64, in Input) (Reply, error) {
	if in.Kind != KindText {
		return Reply{}, nil
	}

	email, ok := ValidEmail(in.Value)
	if !ok {
		return Reply{Text: MsgBadEmail}, nil
	}

	code, _ := state.TempString(e.sessions, userID, tempCourse)
	name, _ := state.TempString(e.sessions, userID, tempName)

	owner, found, err := e.regs.EmailOwner(ctx, email)
	if err != nil {
		return Reply{Text: MsgInternal}, fmt.Errorf("email owner check: %w", err)
	}
	if found && owner != userID {
		return Reply{Text: MsgEmailTaken}, nil
	}

	// Duplicate (user, course) at this point means a retried submission:
	// finish the dialog as if it had just succeeded, without a second row.
	registered, err := e.regs.Registered(ctx, userID, code)
	if err != nil {
		return Reply{Text: MsgInternal}, fmt.Errorf("registered check: %w", err)
	}
	if registered {
		e.sessions.Clear(userID)
		logger.Debug(ctx, "flow", "dialog.duplicate",
			slog.Int64("user_id", userID),
			slog.String("course", code),
			slog.String("outcome", "idempotent"),
		)
		return Reply{Text: MsgSuccess}, nil
	}

	// The owner is this user but on a different course: the composite
	// (telegram_id, email) index would reject the insert, so ask for a
	// fresh address up front.
	if found {
		return Reply{Text: MsgEmailUsed}, nil
	}

	err = e.regs.Register(ctx, storage.Registration{
		Course:     code,
		Name:       name,
		TelegramID: userID,
		Email:      email,
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyRegistered):
		// Lost the race against our own earlier submission; same idempotent exit.
		e.sessions.Clear(userID)
		return Reply{Text: MsgSuccess}, nil
	case errors.Is(err, storage.ErrEmailTaken):
		return Reply{Text: MsgEmailTaken}, nil
	case errors.Is(err, storage.ErrEmailReused):
		return Reply{Text: MsgEmailUsed}, nil
	case err != nil:
		return Reply{Text: MsgInternal}, fmt.Errorf("register: %w", err)
	}

	courseName := code
	if course, found, cerr := e.catalog.Get(ctx, code); cerr == nil && found {
		courseName = course.Name
	}
	if e.notifier != nil {
		e.notifier.Notify(ctx, email, code, courseName)
	}

	e.sessions.Clear(userID)
	logger.Info(ctx, "flow", "dialog.done",
		slog.Int64("user_id", userID),
		slog.String("course", code),
		slog.String("outcome", "registered"),
	)
	return Reply{Text: MsgSuccess}, nil
}
