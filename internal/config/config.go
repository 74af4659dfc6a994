package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/feed-relay/internal/filters"
	"github.com/lepinkainen/feed-relay/internal/mastodon"
	"github.com/lepinkainen/feed-relay/internal/relay"
	loader "github.com/lepinkainen/feed-relay/pkg/config"
	"github.com/lepinkainen/feed-relay/pkg/database"
	"github.com/lepinkainen/feed-relay/pkg/filesystem"
	"github.com/lepinkainen/feed-relay/pkg/urlutils"
)

// DefaultPath is the configuration file used when none is given
const DefaultPath = "config.yaml"

// Configuration errors
var (
	ErrNoFeeds           = errors.New("no feeds configured")
	ErrInvalidVisibility = errors.New("invalid visibility")
)

// FeedConfig is a single feed entry
type FeedConfig struct {
	Label string `mapstructure:"label"`
	URL   string `mapstructure:"url"`
}

// Config holds the central application configuration
type Config struct {
	// Mastodon account settings. Only base_url and client_token are used to post;
	// the remaining fields are accepted so older configuration files still load.
	Mastodon struct {
		BaseURL      string `mapstructure:"base_url"`
		APIURL       string `mapstructure:"api_url"`
		ClientKey    string `mapstructure:"client_key"`
		ClientSecret string `mapstructure:"client_secret"`
		ClientToken  string `mapstructure:"client_token"`
		AccountID    string `mapstructure:"account_id"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"mastodon"`

	Feeds []FeedConfig `mapstructure:"feeds"`

	ContentWarnings       []filters.ContentWarningRule `mapstructure:"content_warnings"`
	ContentWarningsSource string                       `mapstructure:"content_warnings_source"` // Path or URL with extra rules

	Filters struct {
		Hashtags []string `mapstructure:"hashtags"`
	} `mapstructure:"filters"`

	Persistence struct {
		Driver       string `mapstructure:"driver"`        // sqlite or postgres
		DatabasePath string `mapstructure:"database_path"` // File path, or DSN for postgres
	} `mapstructure:"persistence"`

	Posting struct {
		Visibility           string `mapstructure:"visibility"`
		DryRun               bool   `mapstructure:"dry_run"`
		MaxDescriptionLength int    `mapstructure:"max_description_length"`
		Language             string `mapstructure:"language"`
	} `mapstructure:"posting"`

	HTTP struct {
		Timeout   time.Duration `mapstructure:"timeout"`
		UserAgent string        `mapstructure:"user_agent"`
	} `mapstructure:"http"`

	Metrics struct {
		TextfilePath string `mapstructure:"textfile_path"` // Prometheus textfile, disabled when empty
	} `mapstructure:"metrics"`

	path string
}

// ruleFile is the layout of an external content warning list
type ruleFile struct {
	ContentWarnings []filters.ContentWarningRule `yaml:"content_warnings" json:"content_warnings"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mastodon.base_url", "")
	v.SetDefault("mastodon.client_token", "")

	v.SetDefault("content_warnings_source", "")

	v.SetDefault("persistence.driver", database.DriverSQLite)
	v.SetDefault("persistence.database_path", "relay.db")

	v.SetDefault("posting.visibility", mastodon.VisibilityPublic)
	v.SetDefault("posting.dry_run", false)
	v.SetDefault("posting.max_description_length", relay.DefaultMaxDescriptionLength)
	v.SetDefault("posting.language", relay.DefaultLanguage)

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "feed-relay/1.0")

	v.SetDefault("metrics.textfile_path", "")
}

// LoadConfig loads the configuration from a YAML or TOML file. Relative paths are
// looked up in the working directory first, then next to the executable.
//
// Any key can be overridden from the environment with the FEED_RELAY_ prefix, e.g.
// FEED_RELAY_MASTODON_CLIENT_TOKEN.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	resolved, err := filesystem.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(resolved)
	v.SetEnvPrefix("FEED_RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", resolved, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config %s: %w", resolved, err)
	}
	config.path = resolved

	if config.Mastodon.BaseURL == "" {
		config.Mastodon.BaseURL = config.Mastodon.APIURL
	}

	if config.ContentWarningsSource != "" {
		rules, err := loadRuleFile(ctx, resolved, config.ContentWarningsSource, config.HTTP.UserAgent)
		if err != nil {
			return nil, err
		}
		config.ContentWarnings = append(config.ContentWarnings, rules...)
	}

	return &config, nil
}

// loadRuleFile reads extra content warning rules from a file relative to the
// configuration, or from a URL
func loadRuleFile(ctx context.Context, configPath, source, userAgent string) ([]filters.ContentWarningRule, error) {
	loaderConfig := loader.DefaultLoaderConfig()
	loaderConfig.UserAgent = userAgent

	if loader.IsRemote(source) {
		loaderConfig.RemoteURL = source
	} else {
		if !filepath.IsAbs(source) {
			source = filepath.Join(filepath.Dir(configPath), source)
		}
		loaderConfig.LocalPath = source
	}

	var rules ruleFile
	if err := loader.Load(ctx, loaderConfig, &rules); err != nil {
		return nil, fmt.Errorf("error loading content warnings from %s: %w", source, err)
	}

	return rules.ContentWarnings, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Validate checks the configuration for a run. Mastodon credentials are only
// required when posts are actually published.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Feeds) == 0 {
		errs = append(errs, ErrNoFeeds)
	}
	for i, feed := range c.Feeds {
		if strings.TrimSpace(feed.Label) == "" {
			errs = append(errs, fmt.Errorf("feed %d: label is empty", i+1))
		}
		if strings.TrimSpace(feed.URL) == "" {
			errs = append(errs, fmt.Errorf("feed %d: url is empty", i+1))
		} else if !urlutils.IsHTTPURL(feed.URL) {
			errs = append(errs, fmt.Errorf("feed %d: %q is not an http(s) URL", i+1, feed.URL))
		}
	}

	for i, rule := range c.ContentWarnings {
		if strings.TrimSpace(rule.Label) == "" {
			errs = append(errs, fmt.Errorf("content warning %d: label is empty", i+1))
		}
	}

	if !mastodon.ValidVisibility(c.Posting.Visibility) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidVisibility, c.Posting.Visibility))
	}
	if c.Posting.MaxDescriptionLength <= 0 {
		errs = append(errs, fmt.Errorf("posting.max_description_length must be positive, got %d", c.Posting.MaxDescriptionLength))
	}

	if c.Persistence.Driver != database.DriverSQLite && c.Persistence.Driver != database.DriverPostgres {
		errs = append(errs, fmt.Errorf("unsupported persistence driver %q", c.Persistence.Driver))
	}
	if c.Persistence.DatabasePath == "" {
		errs = append(errs, errors.New("persistence.database_path is empty"))
	}

	if !c.Posting.DryRun {
		if c.Mastodon.BaseURL == "" {
			errs = append(errs, errors.New("mastodon.base_url is required unless dry_run is set"))
		} else if !urlutils.IsHTTPURL(c.Mastodon.BaseURL) {
			errs = append(errs, fmt.Errorf("mastodon.base_url %q is not an http(s) URL", c.Mastodon.BaseURL))
		}
		if c.Mastodon.ClientToken == "" {
			errs = append(errs, errors.New("mastodon.client_token is required unless dry_run is set"))
		}
	}

	return errors.Join(errs...)
}

// Sources returns the configured feeds in order
func (c *Config) Sources() []relay.FeedSource {
	sources := make([]relay.FeedSource, 0, len(c.Feeds))
	for _, feed := range c.Feeds {
		sources = append(sources, relay.FeedSource{Label: feed.Label, URL: feed.URL})
	}
	return sources
}

// DatabaseConfig returns the dedup store settings
func (c *Config) DatabaseConfig() database.Config {
	dbConfig := database.DefaultConfig()
	dbConfig.Driver = c.Persistence.Driver
	dbConfig.Path = c.Persistence.DatabasePath
	return dbConfig
}

// RelayOptions returns the pipeline settings
func (c *Config) RelayOptions() relay.Options {
	return relay.Options{
		Rules:                c.ContentWarnings,
		Hashtags:             c.Filters.Hashtags,
		MaxDescriptionLength: c.Posting.MaxDescriptionLength,
		Language:             c.Posting.Language,
	}
}

// MastodonConfig returns the API client settings
func (c *Config) MastodonConfig() mastodon.Config {
	return mastodon.Config{
		BaseURL:     c.Mastodon.BaseURL,
		AccessToken: c.Mastodon.ClientToken,
		Visibility:  c.Posting.Visibility,
		Timeout:     c.HTTP.Timeout,
		UserAgent:   c.HTTP.UserAgent,
	}
}
