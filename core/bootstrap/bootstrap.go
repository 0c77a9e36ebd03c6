package bootstrap

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/Famer-0/Tg-bot/core/config"
	"github.com/Famer-0/Tg-bot/core/database"
	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// Core holds the shared infrastructure built during startup.
type Core struct {
	DB *sqlx.DB
}

// InitializeCore prepares logging, the database connection, migrations and seed data.
func InitializeCore(cfg *coreconfig.Config, dbCfg database.Config, seeders ...Seeder) (*Core, error) {
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := database.RunMigrations(dbCfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	for _, s := range seeders {
		start := time.Now()
		if err := s.Seed(db); err != nil {
			db.Close()
			logger.SEED.Error("seed failed",
				slog.String("event", "seed"),
				slog.String("seeder", s.Name()),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.SEED.Debug("seed done",
			slog.String("event", "seed"),
			slog.String("seeder", s.Name()),
			slog.Duration("duration", logger.Took(start)),
		)
	}

	return &Core{DB: db}, nil
}

// Close releases resources owned by the core.
func (c *Core) Close() {
	if c == nil {
		return
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Shutdown()
}
