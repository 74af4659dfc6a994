// Package mastodon publishes prepared posts as statuses on a Mastodon account.
package mastodon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/lepinkainen/feed-relay/internal/relay"
	httputil "github.com/lepinkainen/feed-relay/pkg/http"
)

// ErrUnauthorized is returned when the server rejects the access token
var ErrUnauthorized = errors.New("mastodon: unauthorized")

// Status visibilities accepted by the API
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// ValidVisibility reports whether v is a visibility the API accepts
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect:
		return true
	}
	return false
}

// Config holds the account connection settings
type Config struct {
	BaseURL     string
	AccessToken string
	Visibility  string
	Timeout     time.Duration
	UserAgent   string
}

// Account is the subset of the account entity the relay uses
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	URL      string `json:"url"`
}

// Status is the subset of the status entity returned after posting
type Status struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client talks to the Mastodon REST API using a bearer token
type Client struct {
	client     *httputil.Client
	baseURL    string
	visibility string
}

// NewClient creates an API client. Visibility defaults to public.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("mastodon base URL is empty")
	}
	if config.AccessToken == "" {
		return nil, errors.New("mastodon access token is empty")
	}
	if config.Visibility == "" {
		config.Visibility = VisibilityPublic
	}
	if !ValidVisibility(config.Visibility) {
		return nil, fmt.Errorf("invalid visibility %q", config.Visibility)
	}

	httpConfig := httputil.DefaultConfig()
	if config.Timeout > 0 {
		httpConfig.Timeout = config.Timeout
	}
	if config.UserAgent != "" {
		httpConfig.UserAgent = config.UserAgent
	}
	httpConfig.Headers["Accept"] = "application/json"
	httpConfig.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.AccessToken}),
	}

	return &Client{
		client:     httputil.NewClient(httpConfig),
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		visibility: config.Visibility,
	}, nil
}

// VerifyCredentials checks the access token and returns the authenticated account
func (c *Client) VerifyCredentials(ctx context.Context) (*Account, error) {
	resp, err := c.client.GetWithContext(ctx, c.baseURL+"/api/v1/accounts/verify_credentials")
	if err != nil {
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	var account Account
	if err := httputil.DecodeJSONResponse(resp, &account); err != nil {
		return nil, wrapAPIError("failed to verify credentials", err)
	}

	slog.Debug("Verified Mastodon credentials", "account", account.Acct, "id", account.ID)
	return &account, nil
}

// Publish implements relay.Publisher by posting a status
func (c *Client) Publish(ctx context.Context, post relay.PreparedPost) error {
	_, err := c.PostStatus(ctx, post)
	return err
}

// PostStatus creates a status from the prepared post and returns it
func (c *Client) PostStatus(ctx context.Context, post relay.PreparedPost) (*Status, error) {
	resp, err := c.client.PostFormWithContext(ctx, c.baseURL+"/api/v1/statuses", c.statusForm(post))
	if err != nil {
		return nil, fmt.Errorf("failed to post status: %w", err)
	}

	var status Status
	if err := httputil.DecodeJSONResponse(resp, &status); err != nil {
		return nil, wrapAPIError("failed to post status", err)
	}

	slog.Debug("Posted status", "id", status.ID, "url", status.URL)
	return &status, nil
}

func (c *Client) statusForm(post relay.PreparedPost) url.Values {
	form := url.Values{}
	form.Set("status", post.Body)
	form.Set("sensitive", strconv.FormatBool(post.Sensitive))
	form.Set("visibility", c.visibility)
	if post.SpoilerText != nil {
		form.Set("spoiler_text", *post.SpoilerText)
	}
	if post.Language != "" {
		form.Set("language", post.Language)
	}
	return form
}

func wrapAPIError(msg string, err error) error {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w: %w", msg, ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// DryRunPublisher logs posts instead of publishing them
type DryRunPublisher struct{}

// Publish implements relay.Publisher
func (DryRunPublisher) Publish(_ context.Context, post relay.PreparedPost) error {
	spoiler := ""
	if post.SpoilerText != nil {
		spoiler = *post.SpoilerText
	}
	slog.Info("Dry run, not posting", "spoiler_text", spoiler, "language", post.Language, "status", post.Body)
	return nil
}
