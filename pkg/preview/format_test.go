package preview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/feed-relay/internal/relay"
)

func testPost(spoiler string) relay.PendingPost {
	post := relay.ComposePost("Example News", "Big Virus Outbreak", "A virus spreads", "http://x/1", nil, "en")
	if spoiler != "" {
		post.SpoilerText = &spoiler
	}
	return relay.PendingPost{
		Feed: relay.FeedSource{Label: "Example News", URL: "https://example.com/rss"},
		Link: "http://x/1",
		Post: post,
	}
}

func TestFormatCompactListItem(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		pending  relay.PendingPost
		expected string
	}{
		{
			name:     "without content warning",
			index:    0,
			pending:  testPost(""),
			expected: " 1. Example News - Big Virus Outbreak",
		},
		{
			name:     "with content warning",
			index:    9,
			pending:  testPost("CW: health"),
			expected: "10. [CW: health] Example News - Big Virus Outbreak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCompactListItem(tt.index, tt.pending); got != tt.expected {
				t.Errorf("FormatCompactListItem() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFormatCompactListItemTruncatesTitle(t *testing.T) {
	pending := testPost("")
	pending.Post.Body = "Source: Example News\n\n" + strings.Repeat("ä", 100) + "\ndescription\nhttp://x/1"

	got := FormatCompactListItem(0, pending)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long title should be truncated, got %q", got)
	}
	if strings.Count(got, "ä") != 67 {
		t.Errorf("truncated title has %d characters, expected 67", strings.Count(got, "ä"))
	}
}

func TestFormatDetailedItem(t *testing.T) {
	got := FormatDetailedItem(testPost("CW: health"))

	for _, want := range []string{
		"Feed: Example News (https://example.com/rss)",
		"Link: http://x/1",
		"Content warning: CW: health",
		"Source: Example News\n\nBig Virus Outbreak\nA virus spreads\nhttp://x/1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatDetailedItem() missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatRequest(t *testing.T) {
	got := FormatRequest(testPost("CW: health"), "unlisted")

	for _, want := range []string{
		"CW: health",
		"sensitive: false",
		"visibility: unlisted",
		"language: en",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatRequest() missing %q in:\n%s", want, got)
		}
	}

	if strings.Contains(FormatRequest(testPost(""), "public"), "spoiler_text") {
		t.Error("FormatRequest() should omit an empty spoiler_text")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{
			name:     "short line unchanged",
			text:     "hello world",
			width:    20,
			expected: "hello world",
		},
		{
			name:     "wraps at word boundary",
			text:     "one two three four",
			width:    9,
			expected: "one two\nthree\nfour",
		},
		{
			name:     "keeps blank lines",
			text:     "Source: x\n\ntitle",
			width:    70,
			expected: "Source: x\n\ntitle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.expected {
				t.Errorf("wrapText() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestModelNavigation(t *testing.T) {
	m := NewModel([]relay.PendingPost{testPost(""), testPost("CW: health")}, "public")

	press := func(m Model, key string) Model {
		t.Helper()
		var msg tea.KeyMsg
		switch key {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		updated, _ := m.Update(msg)
		return updated.(Model)
	}

	m = press(m, "down")
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, expected 1", m.cursor)
	}
	m = press(m, "down")
	if m.cursor != 1 {
		t.Errorf("cursor moved past the last post: %d", m.cursor)
	}

	m = press(m, "enter")
	if m.viewMode != DetailViewMode || m.selectedIndex != 1 {
		t.Fatalf("enter should open the detail view, got mode %d index %d", m.viewMode, m.selectedIndex)
	}
	if !strings.Contains(m.View(), "Content warning: CW: health") {
		t.Errorf("detail view does not show the selected post:\n%s", m.View())
	}

	m = press(m, "r")
	if m.viewMode != RequestViewMode {
		t.Errorf("r should toggle to the request view, got %d", m.viewMode)
	}

	m = press(m, "esc")
	if m.viewMode != ListViewMode {
		t.Errorf("esc should return to the list, got %d", m.viewMode)
	}
}
