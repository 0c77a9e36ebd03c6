// Package app assembles the course registration bot: infrastructure from
// bootstrap, repositories, the dialog engine, and the Telegram runtime.
package app

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/Famer-0/Tg-bot/bot"
	"github.com/Famer-0/Tg-bot/config"
	"github.com/Famer-0/Tg-bot/core/bootstrap"
	"github.com/Famer-0/Tg-bot/core/cmd"
	"github.com/Famer-0/Tg-bot/core/state"
	"github.com/Famer-0/Tg-bot/core/telegram"
	"github.com/Famer-0/Tg-bot/flow"
	"github.com/Famer-0/Tg-bot/notify"
	"github.com/Famer-0/Tg-bot/storage"
)

const defaultConfigPath = "config.yaml"

// LoadConfig reads the application config from CONFIG_PATH or config.yaml.
func LoadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return config.Load(path)
}

// App is the running bot instance.
type App struct {
	cfg  *config.Config
	core *bootstrap.Core
	bot  *bot.Bot
}

// Build prepares infrastructure and wires the bot. The returned app is
// ready for Start.
func Build(cfg *config.Config) (cmd.TelegramApp, error) {
	core, err := bootstrap.InitializeCore(cfg.CoreConfig(), cfg.Database,
		bootstrap.SeederFunc{
			SeederName: "courses",
			Fn: func(db *sqlx.DB) error {
				return storage.SeedCourses(context.Background(), storage.NewCourses(db))
			},
		},
	)
	if err != nil {
		return nil, err
	}

	courses := storage.NewCourses(core.DB)
	regs := storage.NewRegistrations(core.DB)
	sessions := state.NewMemoryManager()
	notifier := notify.New(cfg.SMTP)
	engine := flow.NewEngine(sessions, courses, regs, notifier)

	return &App{
		cfg:  cfg,
		core: core,
		bot:  bot.New(cfg, engine, courses, sessions),
	}, nil
}

// Start runs the Telegram adapter until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.bot.Registry(),
		Middlewares: telegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      a.bot.Routes(),
	})
}

// Stop releases database and logging resources.
func (a *App) Stop() {
	a.core.Close()
}
