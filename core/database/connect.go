package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

const connectTimeout = 5 * time.Second

// Connect opens the pool and verifies connectivity before returning it.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	target := []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed",
			append(target,
				slog.String("event", "db.connect"),
				slog.String("err", err.Error()),
			)...,
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.DB.LogAttrs(ctx, slog.LevelError, "db ping failed",
			append(target,
				slog.String("event", "db.ping"),
				slog.String("err", err.Error()),
			)...,
		)
		return nil, fmt.Errorf("db ping: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected",
		append(target,
			slog.String("event", "db.connect"),
			slog.Int("pool_open", cfg.MaxConnections),
			slog.Duration("duration", logger.Took(start)),
		)...,
	)
	return db, nil
}

// WaitForPostgres polls until the database accepts connections or the
// timeout elapses. Used before migrations so a container that starts faster
// than its database does not crash-loop.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}
