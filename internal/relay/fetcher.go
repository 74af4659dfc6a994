package relay

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	httputil "github.com/lepinkainen/feed-relay/pkg/http"
	"github.com/lepinkainen/feed-relay/pkg/urlutils"
)

// HTTPFetcher downloads feeds over HTTP and parses RSS, Atom and JSON Feed documents
type HTTPFetcher struct {
	client *httputil.Client
	parser *gofeed.Parser
}

// NewHTTPFetcher creates a fetcher using the given HTTP client configuration
func NewHTTPFetcher(config *httputil.ClientConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client: httputil.NewClient(config),
		parser: gofeed.NewParser(),
	}
}

// Fetch implements FeedFetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]FeedItem, error) {
	resp, err := f.client.GetWithContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httputil.EnsureStatusOK(resp); err != nil {
		return nil, err
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	base := url
	if urlutils.IsValidURL(parsed.Link) {
		base = parsed.Link
	}

	items := make([]FeedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		items = append(items, convertItem(item, base))
	}

	return items, nil
}

// convertItem maps a parsed entry to a FeedItem, treating empty fields as absent.
// Relative links are resolved against base.
func convertItem(item *gofeed.Item, base string) FeedItem {
	description := item.Description
	if description == "" {
		description = item.Content
	}

	link := item.Link
	if link == "" && len(item.Links) > 0 {
		link = item.Links[0]
	}
	if link != "" {
		if resolved, err := urlutils.ResolveURL(base, link); err == nil {
			link = resolved
		}
	}

	return FeedItem{
		Title:       optional(item.Title),
		Description: optional(description),
		Link:        optional(link),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
