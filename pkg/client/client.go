// Package client is the REST client for the portfolio backend: read
// endpoints for dashboards, properties, gaps, compliance, renewals,
// documents and claims, plus the streaming chat endpoint.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/binder/pkg/logger"
)

// RequestIDHeader carries a per-request uuid so backend logs can be
// correlated with client logs.
const RequestIDHeader = "X-Request-ID"

// Client talks to one backend on behalf of one organization. It is safe for
// concurrent use.
type Client struct {
	baseURL        *url.URL
	organizationID string
	httpClient     *http.Client
	logger         *slog.Logger
	maxRetries     int
	timeout        time.Duration
	backoff        time.Duration
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	u, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:        u,
		organizationID: cfg.OrganizationID,
		httpClient:     cfg.HTTPClient,
		logger:         cfg.Logger,
		maxRetries:     cfg.MaxRetries,
		timeout:        cfg.Timeout,
		backoff:        cfg.Backoff,
	}
	if c.httpClient == nil {
		c.httpClient = defaultHTTPClient()
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}

	return c, nil
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// OrganizationID returns the organization requests are scoped to.
func (c *Client) OrganizationID() string {
	return c.organizationID
}

// endpoint resolves path against the base URL and adds the organization id
// and any non-empty query values.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	q := url.Values{}
	if c.organizationID != "" {
		q.Set("organization_id", c.organizationID)
	}
	for k, vs := range query {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// getJSON performs a GET with retries and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.doWithRetry(ctx, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// doWithRetry sends a GET, retrying 429 and 5xx responses with exponential
// backoff. A non-2xx final response is returned as a *StatusError.
func (c *Client) doWithRetry(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.endpoint(path, query)
	requestID := uuid.NewString()

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request for %s: %w", path, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(RequestIDHeader, requestID)

		c.logger.Debug("sending request",
			"method", http.MethodGet,
			"path", path,
			"request_id", requestID,
			"attempt", attempt,
		)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("sending request to %s: %w", path, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		statusErr := newStatusError(http.MethodGet, path, resp)
		if !isRetryable(resp.StatusCode) || attempt >= c.maxRetries {
			return nil, statusErr
		}

		delay := backoff(c.backoff, attempt)
		c.logger.Debug("retrying request",
			"path", path,
			"request_id", requestID,
			"status", statusErr.StatusCode,
			"delay", delay,
		)
		if err := sleepWithContext(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting to retry %s: %w", path, err)
		}
	}
}

// newStatusError drains and closes resp.
func newStatusError(method, path string, resp *http.Response) *StatusError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := base << attempt
	if d <= 0 || d > defaultMaxBackoff {
		return defaultMaxBackoff
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
