// Package config loads supplementary YAML or JSON documents from a local file or a
// remote URL.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	httputil "github.com/lepinkainen/feed-relay/pkg/http"
)

// Supported document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// LoaderConfig represents configuration loading options
type LoaderConfig struct {
	RemoteURL string
	LocalPath string
	Timeout   time.Duration
	UserAgent string
}

// DefaultLoaderConfig returns default loader configuration
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Timeout: 10 * time.Second,
	}
}

// Load decodes the local file into target, falling back to the remote URL when the
// local file is not configured or cannot be loaded
func Load(ctx context.Context, config *LoaderConfig, target any) error {
	if config.LocalPath == "" && config.RemoteURL == "" {
		return errors.New("no configuration source given")
	}

	var errs []error

	if config.LocalPath != "" {
		err := loadFromFile(config.LocalPath, target)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	if config.RemoteURL != "" {
		err := loadFromURL(ctx, config, target)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// IsRemote reports whether source should be fetched over HTTP
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// DetectFormat picks the document format from the file extension, falling back to
// sniffing the first non-space byte
func DetectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// formatFromContentType maps a response media type to a document format, or ""
// when the server did not say
func formatFromContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mediaType = strings.TrimSpace(mediaType)

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return FormatJSON
	case strings.HasSuffix(mediaType, "/yaml") || strings.HasSuffix(mediaType, "/x-yaml"):
		return FormatYAML
	}
	return ""
}

func decode(format string, data []byte, target any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, target)
	default:
		return yaml.Unmarshal(data, target)
	}
}

// loadFromURL fetches and decodes a remote document using the shared HTTP client
func loadFromURL(ctx context.Context, config *LoaderConfig, target any) error {
	httpConfig := httputil.DefaultConfig()
	httpConfig.Timeout = config.Timeout
	if config.UserAgent != "" {
		httpConfig.UserAgent = config.UserAgent
	}

	client := httputil.NewClient(httpConfig)
	resp, err := client.GetWithContext(ctx, config.RemoteURL)
	if err != nil {
		return fmt.Errorf("failed to fetch config from URL: %w", err)
	}

	if err := httputil.EnsureStatusOK(resp); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("HTTP error fetching config: %w", err)
	}

	data, err := httputil.ReadResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read config from URL: %w", err)
	}

	format := formatFromContentType(httputil.GetContentType(resp))
	if format == "" {
		format = DetectFormat(config.RemoteURL, data)
	}

	if err := decode(format, data, target); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	return nil
}

// loadFromFile reads and decodes a local document
func loadFromFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := decode(DetectFormat(path, data), data, target); err != nil {
		return fmt.Errorf("failed to decode configuration %s: %w", path, err)
	}

	return nil
}
