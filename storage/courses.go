package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// Course is a single enrollable catalog entry.
type Course struct {
	Code string `db:"code"`
	Name string `db:"name"`
}

// Courses provides access to the course catalog.
type Courses struct {
	db *sqlx.DB
}

// NewCourses creates the catalog repository.
func NewCourses(db *sqlx.DB) *Courses {
	return &Courses{db: db}
}

// List returns all catalog entries ordered by code.
func (c *Courses) List(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := c.db.SelectContext(ctx, &out, `SELECT code, name FROM courses ORDER BY code`); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

// Get returns a single course by code.
func (c *Courses) Get(ctx context.Context, code string) (Course, bool, error) {
	var course Course
	err := c.db.GetContext(ctx, &course, `SELECT code, name FROM courses WHERE code = $1`, code)
	if err != nil {
		if isNoRows(err) {
			return Course{}, false, nil
		}
		return Course{}, false, fmt.Errorf("get course %s: %w", code, err)
	}
	return course, true, nil
}

// Count returns the number of catalog entries.
func (c *Courses) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

// Add inserts a new course. Returns ErrCourseExists on duplicate code.
func (c *Courses) Add(ctx context.Context, course Course) error {
	start := time.Now()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO courses (code, name) VALUES ($1, $2)`,
		course.Code, course.Name,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	logger.Debug(ctx, "storage.courses", "course.added",
		slog.String("course", course.Code),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
