package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	coreconfig "github.com/Famer-0/Tg-bot/core/config"
	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// ConfigCarrier exposes the core configuration section of an app config.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal lifecycle contract an application must satisfy.
type TelegramApp interface {
	Start(ctx context.Context) error
	Stop()
}

// Run loads configuration, builds the application and blocks until shutdown.
func Run[C ConfigCarrier](loadConfig func() (C, error), build func(C) (TelegramApp, error)) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	app, err := build(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		logger.Shutdown()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.L.Info("shutdown signal received", slog.String("event", "app.stop"))
	case err := <-errCh:
		if err != nil {
			logger.L.Error("app failed",
				slog.String("event", "app.run"),
				slog.String("err", err.Error()),
			)
		}
	}

	app.Stop()
	logger.Shutdown()
}
