package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// Registration is one committed enrollment row.
type Registration struct {
	ID         int64  `db:"id"`
	Course     string `db:"course"`
	Name       string `db:"name"`
	TelegramID int64  `db:"telegram_id"`
	Email      string `db:"email"`
}

// Registrations provides access to committed enrollments.
type Registrations struct {
	db *sqlx.DB
}

// NewRegistrations creates the enrollment repository.
func NewRegistrations(db *sqlx.DB) *Registrations {
	return &Registrations{db: db}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Register inserts one enrollment row atomically. The unique indexes on
// (telegram_id, course) and (telegram_id, email) reject duplicates even when
// two submissions race; the cross-user email check runs inside the same
// transaction because the schema carries no single-column email index.
// Returns ErrAlreadyRegistered, ErrEmailReused or ErrEmailTaken on conflict.
func (r *Registrations) Register(ctx context.Context, reg Registration) error {
	start := time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner int64
	err = tx.GetContext(ctx, &owner,
		`SELECT telegram_id FROM users WHERE email = $1 AND telegram_id <> $2 LIMIT 1`,
		reg.Email, reg.TelegramID,
	)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !isNoRows(err):
		return fmt.Errorf("check email owner: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (course, name, telegram_id, email) VALUES ($1, $2, $3, $4)`,
		reg.Course, reg.Name, reg.TelegramID, reg.Email,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register tx: %w", err)
	}

	logger.Info(ctx, "storage.registrations", "register.committed",
		slog.Int64("user_id", reg.TelegramID),
		slog.String("course", reg.Course),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// RegisteredCourses returns the course codes the user is enrolled in.
func (r *Registrations) RegisteredCourses(ctx context.Context, telegramID int64) ([]string, error) {
	var codes []string
	err := r.db.SelectContext(ctx, &codes,
		`SELECT course FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return nil, fmt.Errorf("list registered courses: %w", err)
	}
	return codes, nil
}

// Registered reports whether the user already holds an enrollment for the course.
func (r *Registrations) Registered(ctx context.Context, telegramID int64, course string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE telegram_id = $1 AND course = $2)`,
		telegramID, course)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

// EmailOwner returns the telegram id currently bound to the email, if any.
func (r *Registrations) EmailOwner(ctx context.Context, email string) (int64, bool, error) {
	var owner int64
	err := r.db.GetContext(ctx, &owner,
		`SELECT telegram_id FROM users WHERE email = $1 LIMIT 1`, email)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("find email owner: %w", err)
	}
	return owner, true, nil
}
