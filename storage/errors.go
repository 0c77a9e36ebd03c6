package storage

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrAlreadyRegistered means the user already holds a registration for this course.
	ErrAlreadyRegistered = errors.New("storage: user already registered for course")
	// ErrEmailTaken means the email is bound to a different user.
	ErrEmailTaken = errors.New("storage: email used by another user")
	// ErrEmailReused means the user already spent this email on another registration.
	ErrEmailReused = errors.New("storage: email already used by this user")
	// ErrCourseExists means a course with this code is already in the catalog.
	ErrCourseExists = errors.New("storage: course code already exists")
)

const uniqueViolation = "23505"

// mapUniqueViolation translates a Postgres unique constraint error into a
// domain conflict sentinel. The constraint name decides which invariant fired.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "uq_users_user_course":
		return ErrAlreadyRegistered
	case "uq_users_user_email":
		// Composite (telegram_id, email) index: only the same user can trip it.
		return ErrEmailReused
	case "courses_pkey":
		return ErrCourseExists
	}
	return err
}
