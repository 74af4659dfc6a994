package filters

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// wordPattern finds a literal phrase bounded by word boundaries on both sides.
// Word characters are Unicode letters, marks, decimal digits and connector
// punctuation, so "café" is one word and "ÄVIRUS" does not contain "virus".
type wordPattern struct {
	// re is anchored at the candidate start. When it has a capture group, the
	// group is an optional suffix that may be dropped to reach a boundary.
	re *regexp.Regexp
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.M, r) || unicode.Is(unicode.Nd, r) || unicode.Is(unicode.Pc, r)
}

// atBoundary reports whether a word boundary lies at byte offset i of s
func atBoundary(s string, i int) bool {
	before := false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	after := false
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

// find returns the byte span of the leftmost bounded match starting at or after from
func (w wordPattern) find(s string, from int) (int, int, bool) {
	for i := from; i < len(s); {
		if atBoundary(s, i) {
			if m := w.re.FindStringSubmatchIndex(s[i:]); m != nil {
				if atBoundary(s, i+m[1]) {
					return i, i + m[1], true
				}
				if len(m) >= 4 && m[2] >= 0 && m[2] < m[3] && atBoundary(s, i+m[2]) {
					return i, i + m[2], true
				}
			}
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return 0, 0, false
}

func (w wordPattern) matches(s string) bool {
	_, _, ok := w.find(s, 0)
	return ok
}

// replaceAll substitutes every non-overlapping bounded match, scanning left to right
func (w wordPattern) replaceAll(s, replacement string) string {
	var out []byte
	last := 0
	for {
		start, end, ok := w.find(s, last)
		if !ok {
			break
		}
		out = append(out, s[last:start]...)
		out = append(out, replacement...)
		last = end
	}
	if out == nil {
		return s
	}
	return string(append(out, s[last:]...))
}
