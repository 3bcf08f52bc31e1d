package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig shapes the backoff of the JSON API clients.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig is used for the YouTube Data API and HN Algolia.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

func (rc RetryConfig) backOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = rc.InitialWait
	bo.MaxInterval = rc.MaxWait
	if rc.Multiplier > 0 {
		bo.Multiplier = rc.Multiplier
	}
	bo.RandomizationFactor = 0.2
	return bo
}

// RetryDo calls fn until it succeeds, fails with a non-transient error or
// MaxRetries retries are spent. Cancelling ctx stops the wait between tries.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		out, err := fn()
		if err != nil && !isRetryable(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(rc.backOff()),
		backoff.WithMaxTries(uint(rc.MaxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			slog.Debug("retrying", slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
		}),
	)
}

// RetryHTTP retries fn on transport errors and on 429/5xx answers. Other
// statuses, 4xx included, are returned to the caller with the body open.
func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	return RetryDo(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &httpStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
}

type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// isRetryable reports whether err is transient: a retryable status, a dial
// or DNS failure, or a network timeout.
func isRetryable(err error) bool {
	var statusErr *httpStatusError
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &statusErr), errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
