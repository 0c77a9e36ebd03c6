package telegram

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"
)

// WebhookOptions holds the listener address and the public callback URL.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions selects between webhook and long-poll update delivery.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller returns the telebot poller for the configured run mode.
// Anything other than webhook falls back to long polling.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), RunModeWebhook) {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}

	timeout := opts.LongPollTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeout) * time.Second}
}
