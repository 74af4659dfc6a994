package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httputil "github.com/lepinkainen/feed-relay/pkg/http"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <link>http://x/</link>
    <description>Example feed</description>
    <item>
      <title>Big Virus Outbreak</title>
      <description><![CDATA[<p>A virus spreads</p>]]></description>
      <link>http://x/1</link>
    </item>
    <item>
      <title>No link here</title>
      <description>Nothing to point at</description>
    </item>
    <item>
      <link>http://x/3</link>
      <description>Untitled</description>
    </item>
  </channel>
</rss>`

const testAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <id>urn:example</id>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom entry</title>
    <id>urn:example:1</id>
    <link href="http://x/atom/1"/>
    <updated>2024-01-01T00:00:00Z</updated>
    <content type="html">&lt;p&gt;Body only in content&lt;/p&gt;</content>
  </entry>
</feed>`

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(&httputil.ClientConfig{Timeout: 5 * time.Second, UserAgent: "feed-relay-test"})
}

func TestHTTPFetcherRSS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testRSS))
	}))
	defer server.Close()

	items, err := newTestFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("Fetch() returned %d items, expected 3", len(items))
	}

	first := items[0]
	if first.Title == nil || *first.Title != "Big Virus Outbreak" {
		t.Errorf("Title = %v", first.Title)
	}
	if first.Description == nil || *first.Description != "<p>A virus spreads</p>" {
		t.Errorf("Description = %v", first.Description)
	}
	if first.Link == nil || *first.Link != "http://x/1" {
		t.Errorf("Link = %v", first.Link)
	}

	if items[1].Link != nil {
		t.Errorf("entry without a link should have a nil Link, got %q", *items[1].Link)
	}
	if items[2].Title != nil {
		t.Errorf("entry without a title should have a nil Title, got %q", *items[2].Title)
	}
}

func TestHTTPFetcherAtomContentFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testAtom))
	}))
	defer server.Close()

	items, err := newTestFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Fetch() returned %d items, expected 1", len(items))
	}
	if items[0].Description == nil || *items[0].Description != "<p>Body only in content</p>" {
		t.Errorf("Description = %v, expected content fallback", items[0].Description)
	}
	if items[0].Link == nil || *items[0].Link != "http://x/atom/1" {
		t.Errorf("Link = %v", items[0].Link)
	}
}

func TestHTTPFetcherErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusGone)
			},
		},
		{
			name: "unparseable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("this is not a feed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			if _, err := newTestFetcher().Fetch(context.Background(), server.URL); err == nil {
				t.Error("Fetch() should fail")
			}
		})
	}
}

func TestHTTPFetcherResolvesRelativeLinks(t *testing.T) {
	const feed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Relative</title>
    <link>https://blog.example/</link>
    <description>Relative links</description>
    <item>
      <title>Relative entry</title>
      <description>Body</description>
      <link>/posts/1</link>
    </item>
  </channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	items, err := newTestFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(items) != 1 || items[0].Link == nil {
		t.Fatalf("Fetch() = %+v, expected one linked entry", items)
	}
	if *items[0].Link != "https://blog.example/posts/1" {
		t.Errorf("Link = %q, expected https://blog.example/posts/1", *items[0].Link)
	}
}
