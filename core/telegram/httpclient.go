package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/Famer-0/Tg-bot/core/telegram/netutil"
)

// BuildHTTPClient returns the client handed to telebot. Timeouts are tight
// enough that a stuck Telegram API call cannot wedge the long-poll loop, and
// transient transport errors are retried below the client.
func BuildHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 5 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
			attempts: 3,
			backoff:  2 * time.Second,
		},
	}
}

// retryTransport retries transient failures with linear backoff. Requests
// with non-replayable bodies are never retried.
type retryTransport struct {
	base     http.RoundTripper
	attempts int
	backoff  time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	var lastErr error
	total := t.attempts + 1
	for attempt := 1; attempt <= total; attempt++ {
		attemptReq := req
		if attempt > 1 {
			if req.GetBody == nil && req.Body != nil {
				return nil, lastErr
			}
			attemptReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				attemptReq.Body = body
			}
		}

		resp, err := base.RoundTrip(attemptReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == total {
			break
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
