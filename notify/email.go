package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/Famer-0/Tg-bot/core/logger"
	"log/slog"
)

// Config holds SMTP delivery settings. All fields are required for real
// delivery; any missing field downgrades the notifier to a logged no-op.
type Config struct {
	Host     string `yaml:"host" envconfig:"SMTP_SERVER"`
	Port     int    `yaml:"port" envconfig:"SMTP_PORT"`
	User     string `yaml:"user" envconfig:"SMTP_USER"`
	Password string `yaml:"password" envconfig:"SMTP_PASSWORD"`
	From     string `yaml:"from" envconfig:"FROM_EMAIL"`
}

// Configured reports whether every SMTP field is set.
func (c Config) Configured() bool {
	return c.Host != "" && c.Port > 0 && c.User != "" && c.Password != "" && c.From != ""
}

const sendTimeout = 15 * time.Second

// Mailer sends confirmations over SMTP with STARTTLS.
type Mailer struct {
	cfg Config
}

// New returns a Mailer when SMTP is fully configured and a logged Noop otherwise.
func New(cfg Config) Notifier {
	if !cfg.Configured() {
		logger.Warn(context.Background(), "notify", "notify.disabled",
			slog.String("cause", "smtp not configured"),
		)
		return Noop{}
	}
	return &Mailer{cfg: cfg}
}

// Notify dispatches the confirmation email in the background and returns
// immediately. The registration is already committed, so delivery errors are
// only logged.
func (m *Mailer) Notify(ctx context.Context, email, courseCode, courseName string) {
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		start := time.Now()
		if err := m.send(sendCtx, email, courseName); err != nil {
			logger.Error(ctx, "notify", "notify.failed",
				slog.String("course", courseCode),
				slog.String("err", err.Error()),
				slog.Duration("duration", logger.Took(start)),
			)
			return
		}
		logger.Info(ctx, "notify", "notify.sent",
			slog.String("course", courseCode),
			slog.Duration("duration", logger.Took(start)),
		)
	}()
}

func (m *Mailer) send(ctx context.Context, email, courseName string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("✅ Подтверждение регистрации на курс %s", courseName))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"🎉 Поздравляем с регистрацией на курс %s!\n"+
			"Мы рады приветствовать вас в нашей школе программирования.\n"+
			"Ваша регистрация успешно подтверждена.\n"+
			"С уважением,\n"+
			"Команда школы программирования\n", courseName))

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
