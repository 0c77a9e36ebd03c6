package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type contextKey string

const (
	ctxRID      contextKey = "rid"
	ctxUpdateID contextKey = "update_id"
	ctxUserID   contextKey = "user_id"
	ctxChatID   contextKey = "chat_id"
	ctxLogger   contextKey = "logger"
	ctxHandler  contextKey = "handler"
)

func ctxValue[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func ctxWith(ctx context.Context, key contextKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

// WithLogger stores a scoped slog.Logger for downstream layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return ctxWith(ctx, ctxLogger, log)
}

// FromContext returns the stored logger or the global default.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctxValue[*slog.Logger](ctx, ctxLogger); ok {
		return log
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return ctxWith(ctx, ctxRID, rid)
}

// RIDFrom extracts the correlation id, empty when absent.
func RIDFrom(ctx context.Context) string {
	rid, _ := ctxValue[string](ctx, ctxRID)
	return rid
}

// WithUpdateMeta attaches the update, user, and chat identifiers of the
// inbound Telegram update.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = ctxWith(ctx, ctxUpdateID, updateID)
	ctx = ctxWith(ctx, ctxUserID, userID)
	return ctxWith(ctx, ctxChatID, chatID)
}

// WithHandler records which handler owns the rest of this request.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return ctxWith(ctx, ctxHandler, handler)
}

// HandlerFrom returns the owning handler name, empty when absent.
func HandlerFrom(ctx context.Context) string {
	h, _ := ctxValue[string](ctx, ctxHandler)
	return h
}

// UserIDFrom returns the Telegram user id, zero when absent.
func UserIDFrom(ctx context.Context) int64 {
	id, _ := ctxValue[int64](ctx, ctxUserID)
	return id
}

// ChatIDFrom returns the chat id, zero when absent.
func ChatIDFrom(ctx context.Context) int64 {
	id, _ := ctxValue[int64](ctx, ctxChatID)
	return id
}

// UpdateIDFrom returns the update id, zero when absent.
func UpdateIDFrom(ctx context.Context) int {
	id, _ := ctxValue[int](ctx, ctxUpdateID)
	return id
}

// Sanitize strips control and format runes, keeping tab and newline, so user
// supplied text cannot break the single-line log format.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || r == 0x7F:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeLimit sanitizes and truncates to max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := []rune(Sanitize(s))
	if len(cleaned) <= max {
		return string(cleaned)
	}
	return string(cleaned[:max])
}

// BuildRID composes the correlation id as updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID re-encodes a numeric colon-separated rid as dot-joined base36
// segments. Anything else passes through unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	if rid == "" {
		return ""
	}
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	out := make([]string, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		out[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(out, ".")
}
