// Package prime is a client for the Prime Intellect pods API.
//
// The API rate-limits aggressively under bursty polling, so every request goes
// through a bounded exponential backoff on HTTP 429. Any other non-2xx status
// fails immediately: retrying authentication or validation failures would only
// mask them as transient.
package prime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const DefaultAPIEndpoint = "https://api.primeintellect.ai"

const (
	initialBackoff   = 10 * time.Second
	maxBackoffFactor = 10
	maxAttempts      = 6
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %s %s: %s", e.Method, e.URL, e.Status)
}

// Client issues authenticated requests against the Prime Intellect API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
	sleep   func(context.Context, time.Duration) error
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSleep replaces the backoff sleep, enabling time-free tests.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultAPIEndpoint,
		apiKey:  creds.APIKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     slog.Default(),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a single API request, retrying on rate limiting.
// The returned bytes are the raw response body; typed wrappers decode it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	backoff := initialBackoff
	maxBackoff := initialBackoff * maxBackoffFactor
	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, u, err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%s %s: read response: %w", method, u, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxAttempts-1 {
			c.log.Debug("Rate limited by API, backing off", "method", method, "url", u, "wait", backoff)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{Method: method, URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
		}
		return data, nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
