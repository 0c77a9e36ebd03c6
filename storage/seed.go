package storage

import (
	"context"
	"fmt"

	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// DefaultCourses is the catalog seeded into an empty database.
var DefaultCourses = []Course{
	{Code: "html", Name: "HTML & CSS для начинающих"},
	{Code: "js", Name: "JavaScript с нуля"},
	{Code: "react", Name: "React.js для создания интерфейсов"},
}

// catalogWriter is the slice of Courses needed by the seeder.
type catalogWriter interface {
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, course Course) error
}

// SeedCourses inserts the default catalog when the courses table is empty.
// Repeated runs are no-ops, so startup stays idempotent.
func SeedCourses(ctx context.Context, catalog catalogWriter) error {
	count, err := catalog.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}
	if count > 0 {
		logger.Debug(ctx, "db.seed", "seed.skip",
			slog.Int("count", count),
		)
		return nil
	}
	for _, course := range DefaultCourses {
		if err := catalog.Add(ctx, course); err != nil {
			return fmt.Errorf("seed course %s: %w", course.Code, err)
		}
	}
	logger.Info(ctx, "db.seed", "seed.done",
		slog.Int("count", len(DefaultCourses)),
	)
	return nil
}
