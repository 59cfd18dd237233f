// Package fetch implements the resilient HTTP client shared by all
// normalizers.
//
// Semantics: GET/POST with exponential backoff on transient failures.
// Retries cover HTTP 429 (honoring a parseable Retry-After header), HTTP
// 5xx, and connection/timeout errors. Any other 4xx surfaces immediately.
// The retry budget is a fixed attempt count; once exhausted the original
// error propagates to the caller.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config controls Client retry and timeout behavior.
type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase float64
	UserAgent   string
}

// Response is the successful result of a request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError reports a non-retryable or budget-exhausted HTTP status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Client issues HTTP requests with retry/backoff.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger

	// retryOut receives the human-readable per-attempt retry notices the
	// coordinator surfaces from subprocess output.
	retryOut io.Writer
	// sleep is injectable so tests can observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client. A nil logger falls back to zap.NewNop.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 1 {
		cfg.BackoffBase = 2.0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
		retryOut:   os.Stderr,
		sleep:      sleepCtx,
	}
}

// Get issues a GET with retry. Query params and headers are optional.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, header http.Header) (*Response, error) {
	target := rawURL
	if len(params) > 0 {
		sep := "?"
		if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target = rawURL + sep + params.Encode()
	}
	return c.do(ctx, http.MethodGet, target, nil, header)
}

// GetJSON issues a GET with retry and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, header http.Header, v any) error {
	resp, err := c.Get(ctx, rawURL, params, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

// Post issues a POST with a JSON body and the same retry semantics as Get.
func (c *Client) Post(ctx context.Context, rawURL string, jsonBody any, header http.Header) (*Response, error) {
	var body []byte
	if jsonBody != nil {
		var err error
		body, err = json.Marshal(jsonBody)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, rawURL, body, header)
}

// PostJSON issues a POST with retry and decodes the response body into v.
func (c *Client) PostJSON(ctx context.Context, rawURL string, jsonBody any, header http.Header, v any) error {
	resp, err := c.Post(ctx, rawURL, jsonBody, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.roundTrip(ctx, method, rawURL, body, header)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt >= c.cfg.MaxRetries {
				return nil, lastErr
			}
			wait := c.backoff(attempt)
			c.notifyRetry(attempt, fmt.Sprintf("connection error, waiting %.1fs", wait.Seconds()), rawURL)
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
			if attempt >= c.cfg.MaxRetries {
				return nil, lastErr
			}
			wait := c.retryAfter(resp.Header, attempt)
			c.notifyRetry(attempt, fmt.Sprintf("429 rate-limited, waiting %.1fs", wait.Seconds()), rawURL)
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}

		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			lastErr = &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
			if attempt >= c.cfg.MaxRetries {
				return nil, lastErr
			}
			wait := c.backoff(attempt)
			c.notifyRetry(attempt, fmt.Sprintf("HTTP %d, waiting %.1fs", resp.StatusCode, wait.Seconds()), rawURL)
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}

		case resp.StatusCode >= 400:
			// Non-retryable client error: surface immediately.
			return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}

		default:
			return resp, nil
		}
	}

	// Unreachable with MaxRetries >= 0, but keep the budget contract honest.
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("retry budget exhausted for %s", rawURL)
}

func (c *Client) roundTrip(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", rawURL, err)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       data,
	}, nil
}

// backoff returns backoff_base^attempt seconds.
func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(c.cfg.BackoffBase, float64(attempt)) * float64(time.Second))
}

// retryAfter honors a Retry-After header parseable as a float number of
// seconds, falling back to exponential backoff otherwise.
func (c *Client) retryAfter(header http.Header, attempt int) time.Duration {
	if raw := header.Get("Retry-After"); raw != "" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return c.backoff(attempt)
}

func (c *Client) notifyRetry(attempt int, reason, rawURL string) {
	fmt.Fprintf(c.retryOut, "  RETRY %d/%d: %s -- %s\n", attempt+1, c.cfg.MaxRetries, reason, rawURL)
	c.logger.Debug("retrying request",
		zap.Int("attempt", attempt+1),
		zap.Int("max_retries", c.cfg.MaxRetries),
		zap.String("reason", reason),
		zap.String("url", rawURL),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
