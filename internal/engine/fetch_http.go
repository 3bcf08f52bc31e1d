package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxPageBytes caps how much of a page body is read.
const maxPageBytes = 4 << 20

// ErrBlocked is returned when a site answers 403/429 after retries.
var ErrBlocked = errors.New("blocked by remote site")

// newFetchClient creates an HTTP client with proper settings for web scraping.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

var fetchClient = newFetchClient()

// FetchPage GETs an HTML page with browser-like headers and exponential
// backoff on 429/5xx. Other non-200 statuses fail immediately.
func FetchPage(ctx context.Context, pageURL string) (body []byte, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readResponseBody(resp)
}

// FetchPageBrowser GETs pageURL through the stealth client. It falls back to
// FetchPage when no BrowserClient is configured.
func FetchPageBrowser(ctx context.Context, pageURL string) ([]byte, error) {
	bc := cfg.BrowserClient
	if bc == nil {
		return FetchPage(ctx, pageURL)
	}
	metrics.FetchRequests.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, status, err := bc.Do(http.MethodGet, pageURL, ChromeHeaders(), nil)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("stealth fetch: %w", err)
	}
	if status != http.StatusOK {
		metrics.FetchErrors.Add(1)
		return nil, statusErr(status)
	}
	return data, nil
}

func fetchWithRetry(ctx context.Context, fetchURL string) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err := fetchClient.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if isRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, statusErr(resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, backoff.Permanent(statusErr(resp.StatusCode))
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(cfg.FetchTimeout))
}

func statusErr(code int) error {
	if code == http.StatusForbidden || code == http.StatusTooManyRequests {
		return fmt.Errorf("status %d: %w", code, ErrBlocked)
	}
	return fmt.Errorf("status %d", code)
}

// readResponseBody reads at most maxPageBytes, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxPageBytes))
}
