// Package preview shows the posts a relay run would publish in a Bubble Tea TUI.
package preview

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/feed-relay/internal/relay"
)

const separator = "═══════════════════════════════════════════════════════════════════════\n"

// wrapText wraps each line of text to the specified width, breaking at word boundaries
// when possible. Blank lines are kept.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 70
	}

	lines := strings.Split(text, "\n")
	wrapped := make([]string, 0, len(lines))

	for _, paragraph := range lines {
		var line strings.Builder
		lineLen := 0

		for _, word := range strings.Fields(paragraph) {
			wordLen := len([]rune(word))

			if lineLen > 0 && lineLen+1+wordLen > width {
				wrapped = append(wrapped, line.String())
				line.Reset()
				lineLen = 0
			}

			if lineLen > 0 {
				line.WriteString(" ")
				lineLen++
			}

			line.WriteString(word)
			lineLen += wordLen
		}

		wrapped = append(wrapped, line.String())
	}

	return strings.Join(wrapped, "\n")
}

// postTitle returns the entry title line of a post body
func postTitle(body string) string {
	// Body layout is "Source: <label>\n\n<title>\n..."
	parts := strings.SplitN(body, "\n", 4)
	if len(parts) >= 3 {
		return parts[2]
	}
	return body
}

// FormatCompactListItem formats a pending post as a single list line
// Example: " 1. [CW: health] Example News - Big Virus Outbreak"
func FormatCompactListItem(index int, pending relay.PendingPost) string {
	title := postTitle(pending.Post.Body)

	const maxTitleLength = 70
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength-3]) + "..."
	}

	cw := ""
	if pending.Post.SpoilerText != nil {
		cw = fmt.Sprintf("[%s] ", *pending.Post.SpoilerText)
	}

	return fmt.Sprintf("%2d. %s%s - %s", index+1, cw, pending.Feed.Label, title)
}

// FormatDetailedItem formats a pending post the way it will appear once published
func FormatDetailedItem(pending relay.PendingPost) string {
	var b strings.Builder

	b.WriteString(separator)
	b.WriteString(fmt.Sprintf("Feed: %s (%s)\n", pending.Feed.Label, pending.Feed.URL))
	b.WriteString(fmt.Sprintf("Link: %s\n", pending.Link))
	b.WriteString(fmt.Sprintf("Language: %s | Characters: %d\n", pending.Post.Language, len([]rune(pending.Post.Body))))

	if pending.Post.SpoilerText != nil {
		b.WriteString(fmt.Sprintf("Content warning: %s\n", *pending.Post.SpoilerText))
	}

	b.WriteString("\n")
	b.WriteString(wrapText(pending.Post.Body, 70))
	b.WriteString("\n")
	b.WriteString(separator)

	return b.String()
}

// statusRequest mirrors the form fields sent when the post is published
type statusRequest struct {
	Status      string `yaml:"status"`
	SpoilerText string `yaml:"spoiler_text,omitempty"`
	Sensitive   bool   `yaml:"sensitive"`
	Visibility  string `yaml:"visibility"`
	Language    string `yaml:"language,omitempty"`
}

// FormatRequest renders the status request for a pending post as YAML
func FormatRequest(pending relay.PendingPost, visibility string) string {
	req := statusRequest{
		Status:     pending.Post.Body,
		Sensitive:  pending.Post.Sensitive,
		Visibility: visibility,
		Language:   pending.Post.Language,
	}
	if pending.Post.SpoilerText != nil {
		req.SpoilerText = *pending.Post.SpoilerText
	}

	out, err := yaml.Marshal(req)
	if err != nil {
		return fmt.Sprintf("Error rendering request: %s", err)
	}
	return string(out)
}
