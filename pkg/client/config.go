package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultBackoff     = 250 * time.Millisecond
	defaultMaxBackoff  = 5 * time.Second
	maxErrorBodyLength = 4 * 1024
)

// Config configures a Client. It is passed to New once; the Client never
// reads configuration from package state.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000". Required.
	BaseURL string

	// OrganizationID is sent as the organization_id query parameter on every
	// request. Empty omits the parameter.
	OrganizationID string

	// HTTPClient performs requests. Defaults to a client without an overall
	// timeout so chat streams can run as long as the backend keeps writing.
	HTTPClient *http.Client

	// Logger receives debug output about requests and retries.
	Logger *slog.Logger

	// MaxRetries is the number of additional attempts made for a read that
	// fails with 429 or 5xx. The chat request is never retried.
	MaxRetries int

	// Timeout bounds each read request including retries. Zero uses 30s.
	// Chat streams are bounded only by the caller's context.
	Timeout time.Duration

	// Backoff is the delay before the first retry; it doubles on each
	// subsequent attempt. Zero uses 250ms.
	Backoff time.Duration
}

func (c Config) validate() (*url.URL, error) {
	if c.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", c.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", c.BaseURL)
	}
	if c.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}

	return u, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
