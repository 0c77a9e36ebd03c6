// Package sender runs outbound Telegram calls on a worker pool so handler
// goroutines return as soon as the reply is queued. Transient network
// failures are retried with linear backoff under a per-job deadline.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Famer-0/Tg-bot/core/logger"
	"github.com/Famer-0/Tg-bot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed reports an enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull reports a saturated queue; the caller should run inline.
	ErrQueueFull = errors.New("telegram sender: queue full")

	botTokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options tunes the dispatcher; zero values select the defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration caps the total time one job may spend including retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher owns the queue and worker pool for asynchronous sends.
type Dispatcher struct {
	opts Options
	jobs chan job
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts the worker pool immediately.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts: opts.withDefaults(),
		stop: make(chan struct{}),
	}
	d.jobs = make(chan job, d.opts.QueueSize)

	d.wg.Add(d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.deliver(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. The closure must be
// idempotent when retries are enabled. Never blocks; a full queue returns
// ErrQueueFull so the caller can fall back to a synchronous send.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns how many jobs ultimately failed.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close rejects new jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.stop)
		close(d.jobs)
		d.wg.Wait()
	})
}

func (d *Dispatcher) deliver(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	deadline, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := deadline.Err(); err != nil {
			d.fail(ctx, j, err, attempts, time.Since(start))
			return
		}

		err := j.run()
		if err == nil {
			attrs := j.logAttrs()
			if attempt > 1 {
				attrs = append(attrs, slog.Int("attempt", attempt))
			}
			attrs = append(attrs, slog.Duration("duration", time.Since(start)))
			logger.Debug(ctx, "tg.sender", "send.success", attrs...)
			return
		}

		if !netutil.ShouldRetry(err) || attempt == attempts {
			d.fail(ctx, j, err, attempts, time.Since(start))
			return
		}

		backoff := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(backoff)
		select {
		case <-deadline.Done():
			timer.Stop()
			d.fail(ctx, j, deadline.Err(), attempts, time.Since(start))
			return
		case <-timer.C:
		}
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(j.logAttrs(),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
			)...,
		)
	}
}

func (d *Dispatcher) fail(ctx context.Context, j job, err error, attempts int, elapsed time.Duration) {
	d.errs.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail",
		append(j.logAttrs(),
			slog.String("err", redactToken(err)),
			slog.String("err_code", classifyError(err)),
			slog.Int("attempts", attempts),
			slog.Duration("duration", elapsed),
		)...,
	)
}

func (j job) logAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

// classifyError maps a delivery error onto a short code for log filtering.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return "dial"
		}
		if kind := classifyError(opErr.Err); kind != "" && kind != "unknown" {
			return kind
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		if kind := classifyError(urlErr.Err); kind != "" && kind != "unknown" {
			return kind
		}
	}

	switch status := httpStatus(err); {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// redactToken strips bot tokens that the Telegram client may echo in errors.
func redactToken(err error) string {
	if err == nil {
		return ""
	}
	return botTokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func httpStatus(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}

	// telebot formats unknown API failures with a trailing "(NNN)".
	msg := err.Error()
	open := strings.LastIndex(msg, "(")
	closing := strings.LastIndex(msg, ")")
	if open >= 0 && closing > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : closing])); convErr == nil {
			return code
		}
	}
	return 0
}
