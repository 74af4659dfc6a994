// Package textutil provides the text normalisation helpers used when turning feed
// entries into posts.
package textutil

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// anyElement matches every tag name the tokenizer can produce
var anyElement = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// structurePolicy keeps every element so each text node stays a separate
// fragment. Attributes and comments are dropped, and script and style are
// removed together with their content.
var structurePolicy = newStructurePolicy()

func newStructurePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElementsMatching(anyElement)
	p.AllowNoAttrs().OnElementsMatching(anyElement)
	return p
}

// hiddenElements hold content a reader never sees
var hiddenElements = map[string]bool{
	"frame":    true,
	"frameset": true,
	"iframe":   true,
	"noembed":  true,
	"noframes": true,
	"noscript": true,
	"object":   true,
	"script":   true,
	"style":    true,
	"template": true,
	"title":    true,
}

// StripHTML removes markup from the given HTML and joins the remaining text
// nodes with newlines. Every element separates fragments the same way.
// Fragments are trimmed and empty ones dropped.
func StripHTML(input string) string {
	if input == "" {
		return ""
	}

	cleaned := structurePolicy.Sanitize(input)
	tokenizer := html.NewTokenizer(strings.NewReader(cleaned))

	var fragments []string
	hidden := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// EOF, or malformed markup: keep what was collected so far
			return strings.Join(fragments, "\n")
		case html.StartTagToken:
			if name, _ := tokenizer.TagName(); hiddenElements[string(name)] {
				hidden++
			}
		case html.EndTagToken:
			if name, _ := tokenizer.TagName(); hiddenElements[string(name)] && hidden > 0 {
				hidden--
			}
		case html.TextToken:
			if hidden > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				fragments = append(fragments, text)
			}
		}
	}
}

// Truncate returns the first maxChars Unicode code points of s, or s itself if it
// is shorter. Multi-byte characters are never split.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == maxChars {
			return s[:i]
		}
		count++
	}
	return s
}
