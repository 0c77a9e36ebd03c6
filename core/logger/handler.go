package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	tsLayout = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as single lines with a fixed key order,
// either key=value or JSON. Duration attrs are reduced to milliseconds and
// correlation ids are compacted before output.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// entry is the flattened field set of one record.
type entry map[string]any

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON

	e := make(entry, 16)
	ts := r.Time.UTC()
	e["ts"] = ts.Truncate(time.Millisecond).Format(tsLayout)
	e["level"] = normalizeLevel(r.Level.String())
	if isJSON {
		e["ts_unix_nano"] = ts.UnixNano()
	}

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		e.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		e.add(prefix, a)
		return true
	})

	e.fillFromContext(ctx)
	e.compactRID(isJSON)

	if v, _ := e.str("event"); v == "" {
		if r.Message != "" {
			e["event"] = r.Message
		} else {
			e["event"] = "unknown"
		}
	}
	if v, _ := e.str("component"); v == "" {
		e["component"] = "app"
	}

	e.normalizeEnums()
	e.dropEmpty()

	var (
		line []byte
		err  error
	)
	if isJSON {
		line, err = marshalJSONLine(e, h.cfg.keyOrder)
	} else {
		line = marshalKVLine(e, h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	if n := len(line); n == 0 || line[n-1] != '\n' {
		line = append(line, '\n')
	}
	return h.cfg.writer.Write(line)
}

// add flattens one attr (recursing into groups) into the entry.
func (e entry) add(prefix string, attr slog.Attr) {
	key := attr.Key
	if key == "" {
		key = prefix
	} else if prefix != "" {
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			e.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	k, v, ok := coerceValue(key, attr.Value)
	if ok {
		e[k] = v
	}
}

func coerceValue(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		if u := val.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, val.Uint64(), true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return msKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		case nil:
			return key, nil, false
		default:
			return key, fmt.Sprint(x), true
		}
	}
	return key, val.Any(), true
}

// msKey rewrites a duration attr key to its _ms form.
func msKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case !strings.HasSuffix(key, "_ms"):
		return key + "_ms"
	}
	return key
}

func (e entry) str(key string) (string, bool) {
	v, ok := e[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	}
	return fmt.Sprint(v), true
}

// fillFromContext copies correlation metadata into the entry without
// overriding explicitly logged attrs.
func (e entry) fillFromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	put := func(key string, v any) {
		if _, ok := e[key]; !ok {
			e[key] = v
		}
	}
	if rid := RIDFrom(ctx); rid != "" {
		put("rid", rid)
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		put("user_id", uid)
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		put("update_id", id)
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		put("chat_id", cid)
	}
	if hn := HandlerFrom(ctx); hn != "" {
		put("handler", hn)
	}
}

// compactRID shortens the rid field; JSON output keeps the original under
// rid_full for grep-ability.
func (e entry) compactRID(keepFull bool) {
	rid, ok := e.str("rid")
	if !ok || rid == "" {
		return
	}
	compact := CompactRID(rid)
	if compact == "" || compact == rid {
		return
	}
	if keepFull {
		if _, seen := e["rid_full"]; !seen {
			e["rid_full"] = rid
		}
	}
	e["rid"] = compact
}

func (e entry) normalizeEnums() {
	if level, ok := e.str("level"); ok {
		e["level"] = normalizeLevel(level)
	}
	if s, ok := e.str("status"); ok && s != "" {
		if mapped, valid := normalizeStatus(s); valid {
			e["status"] = mapped
		}
	}
	if o, ok := e.str("outcome"); ok && o != "" {
		if mapped, valid := normalizeOutcome(o); valid {
			e["outcome"] = mapped
		} else {
			delete(e, "outcome")
		}
	}
}

func (e entry) dropEmpty() {
	for k, v := range e {
		switch val := v.(type) {
		case string:
			if val == "" {
				delete(e, k)
			}
		case fmt.Stringer:
			if val.String() == "" {
				delete(e, k)
			}
		case nil:
			delete(e, k)
		}
	}
}

// sortedKeys returns the entry keys with the configured prefix order first
// and the rest alphabetical.
func (e entry) sortedKeys(order []string) []string {
	keys := make([]string, 0, len(e))
	seen := make(map[string]struct{}, len(e))
	for _, key := range order {
		if _, ok := e[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	tail := len(keys)
	for key := range e {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[tail:])
	return keys
}

func marshalJSONLine(e entry, order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range e.sortedKeys(order) {
		data, err := json.Marshal(e[key])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.Write(data)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func marshalKVLine(e entry, order []string) []byte {
	var b strings.Builder
	for i, key := range e.sortedKeys(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(e[key]))
	}
	return []byte(b.String())
}

func kvValue(v any) string {
	s, isStr := v.(string)
	if !isStr {
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b)
		}
		s = fmt.Sprint(v)
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return r <= 32 || r == '=' || r == '"'
	}) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
