package filters

import "testing"

func TestRewriteHashtags(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		text     string
		expected string
	}{
		{
			name:     "no tags",
			tags:     nil,
			text:     "Nothing changes",
			expected: "Nothing changes",
		},
		{
			name:     "simple word",
			tags:     []string{"golang"},
			text:     "New golang release",
			expected: "New #golang release",
		},
		{
			name:     "case insensitive match uses configured spelling",
			tags:     []string{"golang"},
			text:     "GOLANG and Golang",
			expected: "#golang and #golang",
		},
		{
			name:     "non-word characters stripped from hashtag",
			tags:     []string{"open-source"},
			text:     "Open-Source tools",
			expected: "#opensource tools",
		},
		{
			name:     "whole words only",
			tags:     []string{"go"},
			text:     "gopher goes to go",
			expected: "gopher goes to #go",
		},
		{
			name:     "cat before category leaves category for the second tag",
			tags:     []string{"cat", "category"},
			text:     "category",
			expected: "#category",
		},
		{
			name:     "both tags present",
			tags:     []string{"cat", "category"},
			text:     "cat category",
			expected: "#cat #category",
		},
		{
			name:     "earlier replacement feeds later tag",
			tags:     []string{"go", "go-lang"},
			text:     "go-lang",
			expected: "##golang",
		},
		{
			name:     "reversed order gives a different result",
			tags:     []string{"go-lang", "go"},
			text:     "go-lang",
			expected: "#golang",
		},
		{
			name:     "non-ascii tag",
			tags:     []string{"café"},
			text:     "Best café in town",
			expected: "Best #café in town",
		},
		{
			name:     "non-ascii tag is case insensitive",
			tags:     []string{"café"},
			text:     "CAFÉ opening",
			expected: "#café opening",
		},
		{
			name:     "non-ascii letters extend the word",
			tags:     []string{"rust"},
			text:     "rustö and ärust but rust",
			expected: "rustö and ärust but #rust",
		},
		{
			name:     "adjacent occurrences all rewritten",
			tags:     []string{"go"},
			text:     "go go,go",
			expected: "#go #go,#go",
		},
		{
			name:     "empty tag ignored",
			tags:     []string{"", "rust"},
			text:     "rust news",
			expected: "#rust news",
		},
		{
			name:     "empty text",
			tags:     []string{"rust"},
			text:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RewriteHashtags(tt.tags, tt.text)
			if result != tt.expected {
				t.Errorf("RewriteHashtags(%v, %q) = %q, expected %q", tt.tags, tt.text, result, tt.expected)
			}
		})
	}
}

func TestFormatHashtag(t *testing.T) {
	tests := []struct {
		tag      string
		expected string
	}{
		{"golang", "#golang"},
		{"open-source", "#opensource"},
		{"open source", "#opensource"},
		{"C++", "#C"},
		{"snake_case", "#snake_case"},
		{"web3", "#web3"},
		{"café", "#café"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if result := FormatHashtag(tt.tag); result != tt.expected {
				t.Errorf("FormatHashtag(%q) = %q, expected %q", tt.tag, result, tt.expected)
			}
		})
	}
}
