package filters

import (
	"regexp"
	"strings"
	"unicode"
)

type compiledTag struct {
	pattern wordPattern
	hashtag string
}

// Rewriter turns configured bare words into hashtags.
//
// Tags are applied one after another in configured order and each pattern runs
// against the output of the previous replacement, so the order of the tag list
// changes the result when tags overlap.
type Rewriter struct {
	tags []compiledTag
}

// NewRewriter compiles the tag list. Empty tags are ignored.
func NewRewriter(tags []string) *Rewriter {
	r := &Rewriter{tags: make([]compiledTag, 0, len(tags))}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		r.tags = append(r.tags, compiledTag{
			pattern: wordPattern{re: regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(tag))},
			hashtag: FormatHashtag(tag),
		})
	}
	return r
}

// Rewrite replaces every whole-word, case-insensitive occurrence of each tag
func (r *Rewriter) Rewrite(text string) string {
	for _, tag := range r.tags {
		text = tag.pattern.replaceAll(text, tag.hashtag)
	}
	return text
}

// RewriteHashtags is a convenience wrapper for one-off rewrites
func RewriteHashtags(tags []string, text string) string {
	return NewRewriter(tags).Rewrite(text)
}

// FormatHashtag returns "#" followed by the tag with every non-word character removed
func FormatHashtag(tag string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, tag)
	return "#" + cleaned
}
