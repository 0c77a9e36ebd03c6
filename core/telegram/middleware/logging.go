package middleware

import (
	"sync"
	"time"

	"github.com/Famer-0/Tg-bot/core/logger"
	"github.com/Famer-0/Tg-bot/core/telegram/callbacks"
	tghelpers "github.com/Famer-0/Tg-bot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers recently logged update ids so an update routed
// through several branches produces one receipt line.
var seenUpdates = struct {
	sync.Mutex
	ids map[int]time.Time
}{ids: make(map[int]time.Time)}

const seenTTL = 10 * time.Second

func firstSighting(updateID int) bool {
	now := time.Now()
	seenUpdates.Lock()
	defer seenUpdates.Unlock()
	for id, ts := range seenUpdates.ids {
		if now.Sub(ts) > seenTTL {
			delete(seenUpdates.ids, id)
		}
	}
	if _, ok := seenUpdates.ids[updateID]; ok {
		return false
	}
	seenUpdates.ids[updateID] = now
	return true
}

// LoggerMiddleware derives the correlation id for the update, stores the
// enriched context for downstream handlers, and emits a sampled debug
// receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		chat, user := c.Chat(), c.Sender()
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && firstSighting(upd.ID) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.Int("update_id", upd.ID),
			}
			if chat != nil {
				attrs = append(attrs,
					slog.Int64("chat_id", chatID),
					slog.String("chat_type", string(chat.Type)),
				)
			}
			if user != nil {
				attrs = append(attrs, slog.Int64("user_id", userID))
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
				if user.LanguageCode != "" {
					attrs = append(attrs, slog.String("lang", user.LanguageCode))
				}
			}
			attrs = append(attrs, receiptAttrs(c, upd)...)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

func receiptAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	var attrs []slog.Attr
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		if upd.Callback.Unique != "" {
			key, payload = upd.Callback.Unique, upd.Callback.Data
		}
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}
