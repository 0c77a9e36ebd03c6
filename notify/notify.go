// Package notify delivers best-effort registration confirmations. Delivery
// runs detached from the dialog that triggered it: failures are logged and
// never reach the user or the committed registration.
package notify

import (
	"context"

	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// Notifier sends a registration confirmation. Implementations return
// immediately; delivery happens in the background.
type Notifier interface {
	Notify(ctx context.Context, email, courseCode, courseName string)
}

// Noop is the notifier used when SMTP is not configured. Each call leaves a
// log line so a silent misconfiguration is still visible.
type Noop struct{}

// Notify logs the skipped delivery and does nothing else.
func (Noop) Notify(ctx context.Context, email, courseCode, courseName string) {
	logger.Warn(ctx, "notify", "notify.skipped",
		slog.String("course", courseCode),
		slog.String("cause", "smtp not configured"),
	)
}
