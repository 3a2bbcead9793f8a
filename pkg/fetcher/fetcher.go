// Package fetcher downloads the announcement listing page with a bounded retry policy
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
)

// Config defines request headers, timeout and retry policy
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	Referer        string
	Headers        map[string]string // extra headers, set last
	Retry          RetryConfig
}

// RetryConfig defines how transient responses are retried.
// Attempts counts the initial request, so Attempts=5 means up to 4 retries.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration // first backoff delay, doubled on each retry
	MaxDelay time.Duration
	Statuses []int // response codes considered transient
}

// StatusError returned for non-2xx responses
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// errPermanent marks errors which should stop retries immediately
var errPermanent = errors.New("permanent failure")

// permanentError wraps an error to signal repeater to stop retrying
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() []error { return []error{e.err, errPermanent} }

// HTTPFetcher makes GET requests with retries on transient status codes
type HTTPFetcher struct {
	client *http.Client
	cfg    Config
}

// Option func type
type Option func(f *HTTPFetcher)

// WithClient sets a custom http client. Config.Timeout is not applied to it.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// New makes HTTPFetcher. Zero values in cfg get the defaults used for the announcement page.
func New(cfg Config, opts ...Option) *HTTPFetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry.Attempts = 5
	}
	if cfg.Retry.Delay == 0 {
		cfg.Retry.Delay = time.Second
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 10 * time.Second
	}
	if cfg.Retry.Statuses == nil {
		cfg.Retry.Statuses = []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout}
	}

	res := &HTTPFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Fetch retrieves the page body. Transient statuses and network errors are retried with
// exponential backoff, any other non-2xx status fails immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", pageURL)
	}

	retrier := repeater.NewBackoff(f.cfg.Retry.Attempts, f.cfg.Retry.Delay,
		repeater.WithMaxDelay(f.cfg.Retry.MaxDelay), repeater.WithJitter(0))

	var body []byte
	attempt := 0
	err = retrier.Do(ctx, func() error {
		attempt++
		data, err := f.get(ctx, pageURL)
		if err != nil {
			lgr.Printf("[DEBUG] attempt %d for %s failed: %v", attempt, pageURL, err)
			return err
		}
		body = data
		return nil
	}, errPermanent)

	if err != nil {
		var pe *permanentError
		if errors.As(err, &pe) {
			return nil, pe.err
		}
		return nil, fmt.Errorf("fetch %s after %d attempt(s): %w", pageURL, attempt, err)
	}
	lgr.Printf("[DEBUG] fetched %s, %d bytes, %d attempt(s)", pageURL, len(body), attempt)
	return body, nil
}

// get makes a single request
func (f *HTTPFetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("create request: %w", err)}
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		serr := &StatusError{URL: pageURL, Code: resp.StatusCode}
		if slices.Contains(f.cfg.Retry.Statuses, resp.StatusCode) {
			return nil, serr
		}
		return nil, &permanentError{err: serr}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
