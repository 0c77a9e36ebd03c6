package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Famer-0/Tg-bot/core/state"
	"github.com/Famer-0/Tg-bot/storage"
)

type fakeCatalog struct {
	courses []storage.Course
	listErr error
}

func (f *fakeCatalog) List(ctx context.Context) ([]storage.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.courses, nil
}

func (f *fakeCatalog) Get(ctx context.Context, code string) (storage.Course, bool, error) {
	for _, c := range f.courses {
		if c.Code == code {
			return c, true, nil
		}
	}
	return storage.Course{}, false, nil
}

type fakeRegs struct {
	mu          sync.Mutex
	rows        []storage.Registration
	registerErr error
}

func (f *fakeRegs) Register(ctx context.Context, reg storage.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	// Same conflict order as the real store: the in-transaction cross-user
	// check first, then the uq_users_user_course and uq_users_user_email
	// unique indexes.
	for _, r := range f.rows {
		if r.Email == reg.Email && r.TelegramID != reg.TelegramID {
			return storage.ErrEmailTaken
		}
	}
	for _, r := range f.rows {
		if r.TelegramID == reg.TelegramID && r.Course == reg.Course {
			return storage.ErrAlreadyRegistered
		}
		if r.TelegramID == reg.TelegramID && r.Email == reg.Email {
			return storage.ErrEmailReused
		}
	}
	reg.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, reg)
	return nil
}

func (f *fakeRegs) RegisteredCourses(ctx context.Context, telegramID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var codes []string
	for _, r := range f.rows {
		if r.TelegramID == telegramID {
			codes = append(codes, r.Course)
		}
	}
	return codes, nil
}

func (f *fakeRegs) Registered(ctx context.Context, telegramID int64, course string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.TelegramID == telegramID && r.Course == course {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegs) EmailOwner(ctx context.Context, email string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email {
			return r.TelegramID, true, nil
		}
	}
	return 0, false, nil
}

type notification struct {
	email, code, name string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(ctx context.Context, email, courseCode, courseName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{email: email, code: courseCode, name: courseName})
}

func newTestEngine() (*Engine, *fakeRegs, *fakeNotifier) {
	catalog := &fakeCatalog{courses: []storage.Course{
		{Code: "html", Name: "HTML & CSS для начинающих"},
		{Code: "js", Name: "JavaScript с нуля"},
		{Code: "react", Name: "React.js для создания интерфейсов"},
	}}
	regs := &fakeRegs{}
	notifier := &fakeNotifier{}
	engine := NewEngine(state.NewMemoryManager(), catalog, regs, notifier)
	return engine, regs, notifier
}

func runFullDialog(t *testing.T, e *Engine, userID int64, course, name, email string) Reply {
	t.Helper()
	ctx := context.Background()

	_, err := e.Start(ctx, userID)
	require.NoError(t, err)

	reply, err := e.Handle(ctx, userID, Select(ActionCourse, course))
	require.NoError(t, err)
	require.NotEmpty(t, reply.Text)

	reply, err = e.Handle(ctx, userID, Text(name))
	require.NoError(t, err)
	require.Len(t, reply.Options, 2)

	reply, err = e.Handle(ctx, userID, Select(ActionConfirm, ""))
	require.NoError(t, err)
	require.Equal(t, MsgAskEmail, reply.Text)

	reply, err = e.Handle(ctx, userID, Text(email))
	require.NoError(t, err)
	return reply
}

func TestStartListsCatalog(t *testing.T) {
	engine, _, _ := newTestEngine()

	reply, err := engine.Start(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, MsgWelcome, reply.Text)
	require.Len(t, reply.Options, 3)
	assert.Equal(t, ActionCourse, reply.Options[0].Action)
	assert.Equal(t, "html", reply.Options[0].Data)
	assert.True(t, engine.Active(1))
}

func TestFullDialogRegistersAndNotifies(t *testing.T) {
	engine, regs, notifier := newTestEngine()

	reply := runFullDialog(t, engine, 42, "html", "Ann", "ann@example.com")

	assert.Equal(t, MsgSuccess, reply.Text)
	require.Len(t, regs.rows, 1)
	row := regs.rows[0]
	assert.Equal(t, "html", row.Course)
	assert.Equal(t, "Ann", row.Name)
	assert.Equal(t, int64(42), row.TelegramID)
	assert.Equal(t, "ann@example.com", row.Email)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "ann@example.com", notifier.sent[0].email)
	assert.Equal(t, "html", notifier.sent[0].code)

	codes, err := regs.RegisteredCourses(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"html"}, codes)

	// Terminal: session is gone, next event is ignored.
	assert.False(t, engine.Active(42))
	ignored, err := engine.Handle(context.Background(), 42, Text("hello"))
	require.NoError(t, err)
	assert.True(t, ignored.Empty())
}

func TestRepeatDialogRejectedAtCourseStep(t *testing.T) {
	engine, regs, notifier := newTestEngine()
	runFullDialog(t, engine, 42, "html", "Ann", "ann@example.com")

	_, err := engine.Start(context.Background(), 42)
	require.NoError(t, err)

	reply, err := engine.Handle(context.Background(), 42, Select(ActionCourse, "html"))
	require.NoError(t, err)

	assert.True(t, reply.Alert)
	assert.Contains(t, reply.Text, "HTML & CSS")
	assert.Len(t, regs.rows, 1)
	assert.Len(t, notifier.sent, 1)

	codes, err := regs.RegisteredCourses(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"html"}, codes, "rejected repeat must not add an enrollment")
}

func TestUnknownCourseRejected(t *testing.T) {
	engine, _, _ := newTestEngine()
	_, err := engine.Start(context.Background(), 1)
	require.NoError(t, err)

	reply, err := engine.Handle(context.Background(), 1, Select(ActionCourse, "golang"))
	require.NoError(t, err)

	assert.Equal(t, MsgUnknownCourse, reply.Text)
	assert.True(t, reply.Alert)

	// Still awaiting a course: a valid pick goes through.
	reply, err = engine.Handle(context.Background(), 1, Select(ActionCourse, "js"))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "JavaScript")
}

func TestNameValidationKeepsState(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "html"))
	require.NoError(t, err)

	reply, err := engine.Handle(ctx, 1, Text("A"))
	require.NoError(t, err)
	assert.Equal(t, MsgBadName, reply.Text)

	reply, err = engine.Handle(ctx, 1, Text("Ann"))
	require.NoError(t, err)
	assert.Len(t, reply.Options, 2)
}

func TestEditNameRestartsNameStep(t *testing.T) {
	engine, regs, _ := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "html"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Text("Ann"))
	require.NoError(t, err)

	reply, err := engine.Handle(ctx, 1, Select(ActionEdit, ""))
	require.NoError(t, err)
	assert.Equal(t, MsgAskNewName, reply.Text)

	_, err = engine.Handle(ctx, 1, Text("Anna"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)
	reply, err = engine.Handle(ctx, 1, Text("anna@example.com"))
	require.NoError(t, err)

	assert.Equal(t, MsgSuccess, reply.Text)
	require.Len(t, regs.rows, 1)
	assert.Equal(t, "Anna", regs.rows[0].Name)
}

func TestEmailValidationKeepsState(t *testing.T) {
	engine, regs, _ := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "html"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Text("Ann"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)

	for _, bad := range []string{"notanemail", "a@b", "@b.c"} {
		reply, err := engine.Handle(ctx, 1, Text(bad))
		require.NoError(t, err)
		assert.Equal(t, MsgBadEmail, reply.Text, "input %q", bad)
	}
	assert.Empty(t, regs.rows)

	reply, err := engine.Handle(ctx, 1, Text("a@b.c"))
	require.NoError(t, err)
	assert.Equal(t, MsgSuccess, reply.Text)
	require.Len(t, regs.rows, 1)
}

func TestCrossUserEmailRejected(t *testing.T) {
	engine, regs, notifier := newTestEngine()
	runFullDialog(t, engine, 1, "js", "Alice", "a@x.com")

	reply := runFullDialog(t, engine, 2, "react", "Bob", "a@x.com")

	assert.Equal(t, MsgEmailTaken, reply.Text)
	assert.Len(t, regs.rows, 1)
	assert.Len(t, notifier.sent, 1)

	// Session stays at the email step so a corrected address succeeds.
	reply, err := engine.Handle(context.Background(), 2, Text("bob@x.com"))
	require.NoError(t, err)
	assert.Equal(t, MsgSuccess, reply.Text)
	assert.Len(t, regs.rows, 2)
}

func TestOwnEmailReuseAcrossCoursesRejected(t *testing.T) {
	engine, regs, notifier := newTestEngine()
	runFullDialog(t, engine, 1, "js", "Alice", "a@x.com")

	reply := runFullDialog(t, engine, 1, "react", "Alice", "a@x.com")

	assert.Equal(t, MsgEmailUsed, reply.Text)
	assert.Len(t, regs.rows, 1)
	assert.Len(t, notifier.sent, 1)

	// Session stays at the email step so a fresh address completes the dialog.
	reply, err := engine.Handle(context.Background(), 1, Text("alice.react@x.com"))
	require.NoError(t, err)
	assert.Equal(t, MsgSuccess, reply.Text)
	assert.Len(t, regs.rows, 2)
}

func TestOwnEmailReuseConflictFromStoreKeepsSession(t *testing.T) {
	engine, regs, _ := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "react"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Text("Alice"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)

	// A racing registration spends the email between the pre-check and the
	// insert; the unique index surfaces it as a conflict, not an error.
	regs.registerErr = storage.ErrEmailReused
	reply, err := engine.Handle(ctx, 1, Text("a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, MsgEmailUsed, reply.Text)
	assert.True(t, engine.Active(1))
}

func TestDuplicateCourseAtEmailStepIsIdempotent(t *testing.T) {
	engine, regs, notifier := newTestEngine()
	ctx := context.Background()

	// Walk the dialog up to the email step, then commit the same submission
	// behind the session's back to simulate a raced duplicate.
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "js"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Text("Ann"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)
	require.NoError(t, regs.Register(ctx, storage.Registration{
		Course: "js", Name: "Ann", TelegramID: 1, Email: "ann@example.com",
	}))

	reply, err := engine.Handle(ctx, 1, Text("ann@example.com"))
	require.NoError(t, err)

	assert.Equal(t, MsgSuccess, reply.Text)
	assert.Len(t, regs.rows, 1)
	assert.Empty(t, notifier.sent, "no notification for a duplicate")
	assert.False(t, engine.Active(1))
}

func TestStoreConflictWinsOverPrecheck(t *testing.T) {
	engine, regs, notifier := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "html"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Text("Ann"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)

	regs.registerErr = storage.ErrAlreadyRegistered
	reply, err := engine.Handle(ctx, 1, Text("ann@example.com"))
	require.NoError(t, err)

	assert.Equal(t, MsgSuccess, reply.Text)
	assert.Empty(t, notifier.sent)
	assert.False(t, engine.Active(1))
}

func TestStorageFailureKeepsSession(t *testing.T) {
	engine, regs, _ := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "html"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Text("Ann"))
	require.NoError(t, err)
	_, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)

	regs.registerErr = errors.New("connection refused")
	reply, err := engine.Handle(ctx, 1, Text("ann@example.com"))
	require.Error(t, err)
	assert.Equal(t, MsgInternal, reply.Text)

	// Retry after recovery succeeds from the same state.
	regs.registerErr = nil
	reply, err = engine.Handle(ctx, 1, Text("ann@example.com"))
	require.NoError(t, err)
	assert.Equal(t, MsgSuccess, reply.Text)
	assert.Len(t, regs.rows, 1)
}

func TestMismatchedInputKindsIgnored(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	_, err := engine.Start(ctx, 1)
	require.NoError(t, err)

	// Free text while a course selection is expected.
	reply, err := engine.Handle(ctx, 1, Text("html"))
	require.NoError(t, err)
	assert.True(t, reply.Empty())

	_, err = engine.Handle(ctx, 1, Select(ActionCourse, "html"))
	require.NoError(t, err)

	// Option press while a typed name is expected.
	reply, err = engine.Handle(ctx, 1, Select(ActionConfirm, ""))
	require.NoError(t, err)
	assert.True(t, reply.Empty())
}

func TestConcurrentUsersIndependent(t *testing.T) {
	engine, regs, _ := newTestEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@example.com", id)
			runFullDialog(t, engine, id, "html", "Ann", email)
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Len(t, regs.rows, 8)
}
