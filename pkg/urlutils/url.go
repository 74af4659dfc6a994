// Package urlutils provides URL validation and resolution helpers.
package urlutils

import (
	"net/url"
	"strings"
)

// IsValidURL checks if a URL is absolute with a scheme and host
func IsValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// IsHTTPURL checks if a URL is a valid http or https URL
func IsHTTPURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// ResolveURL resolves a relative URL against a base URL.
// If the URL is already absolute, it returns it unchanged.
func ResolveURL(baseURL, relativeURL string) (string, error) {
	rel, err := url.Parse(relativeURL)
	if err != nil {
		return "", err
	}

	if rel.IsAbs() {
		return relativeURL, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	return base.ResolveReference(rel).String(), nil
}
