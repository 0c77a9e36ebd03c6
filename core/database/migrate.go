package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Famer-0/Tg-bot/core/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"log/slog"
)

const readyTimeout = 30 * time.Second

// RunMigrations waits for the database and applies every pending up
// migration from the migrations directory next to the working directory.
func RunMigrations(cfg Config) error {
	dsn := cfg.URL()
	if err := WaitForPostgres(dsn, readyTimeout); err != nil {
		logger.MIG.Error("db not ready",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	dir := filepath.Join(cwd, "migrations")

	files := upMigrationFiles(dir)
	if preview, truncated := logger.SummarizeStrings(files, 6); preview != "" {
		logger.MIG.Debug("migrations resolved",
			slog.String("event", "resolve"),
			slog.String("path", dir),
			slog.Int("files_total", len(files)),
			slog.String("files_preview", preview),
			slog.Bool("files_truncated", truncated),
		)
	}

	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		logger.MIG.Error("init failed",
			slog.String("event", "db.migrate"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	from, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	applied := len(files)
	if errors.Is(upErr, migrate.ErrNoChange) {
		upErr = nil
		applied = 0
	}
	if upErr != nil {
		logger.MIG.Error("migration failed",
			slog.String("event", "apply"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	to, _, _ := m.Version()
	logger.MIG.Info("migrations summary",
		slog.String("event", "summary"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", applied),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func upMigrationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
