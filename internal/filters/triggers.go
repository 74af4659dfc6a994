// Package filters implements the content warning and hashtag rules applied to
// feed entries before they are posted.
package filters

import (
	"regexp"
	"strings"
)

// ContentWarningRule maps a set of phrases to a content warning label
type ContentWarningRule struct {
	Label   string   `mapstructure:"label" yaml:"label" json:"label"`
	Phrases []string `mapstructure:"phrases" yaml:"phrases" json:"phrases"`
}

type compiledRule struct {
	label    string
	patterns []wordPattern
}

// Scanner matches content warning rules against entry text. Patterns are compiled once.
type Scanner struct {
	rules []compiledRule
}

// NewScanner compiles the given rules, keeping their configured order
func NewScanner(rules []ContentWarningRule) *Scanner {
	s := &Scanner{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		compiled := compiledRule{label: rule.Label}
		for _, phrase := range rule.Phrases {
			phrase = strings.TrimSpace(phrase)
			if phrase == "" {
				continue
			}
			compiled.patterns = append(compiled.patterns, triggerPattern(phrase))
		}
		s.rules = append(s.rules, compiled)
	}
	return s
}

// triggerPattern matches the phrase as a whole word, case-insensitively, with an
// optional plural "s"
func triggerPattern(phrase string) wordPattern {
	return wordPattern{re: regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(phrase) + `(s)?`)}
}

// Scan returns the labels of all rules with at least one phrase found in the title
// or description, in rule order. It returns nil when nothing matched.
func (s *Scanner) Scan(title, description string) []string {
	var labels []string
	matched := make(map[string]bool)

	for _, rule := range s.rules {
		if matched[rule.label] {
			continue
		}

		for _, pattern := range rule.patterns {
			if pattern.matches(title) || pattern.matches(description) {
				matched[rule.label] = true
				labels = append(labels, rule.label)
				break
			}
		}
	}

	return labels
}

// ScanTriggers is a convenience wrapper for one-off scans
func ScanTriggers(rules []ContentWarningRule, title, description string) []string {
	return NewScanner(rules).Scan(title, description)
}
