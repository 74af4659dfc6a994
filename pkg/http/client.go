package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ClientConfig represents HTTP client configuration
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// Transport overrides http.DefaultTransport, e.g. with an OAuth2 transport
	Transport http.RoundTripper
}

// DefaultConfig returns default HTTP client configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:   30 * time.Second,
		UserAgent: "feed-relay/1.0",
		Headers:   make(map[string]string),
	}
}

// Client is an HTTP client that applies the configured timeout and headers to
// every request. Requests are sent once; failures are returned to the caller.
type Client struct {
	client *http.Client
	config *ClientConfig
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		config: config,
	}
}

// GetWithContext performs an HTTP GET request with context
func (c *Client) GetWithContext(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.Do(req)
}

// PostWithContext performs an HTTP POST request with context
func (c *Client) PostWithContext(ctx context.Context, rawURL string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.Do(req)
}

// PostFormWithContext performs an HTTP POST request with a URL-encoded form body
func (c *Client) PostFormWithContext(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	return c.PostWithContext(ctx, rawURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// Do performs an HTTP request after applying the default headers
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	return c.client.Do(req)
}
