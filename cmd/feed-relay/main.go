// Package main provides the CLI entry point for feed-relay.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/feed-relay/configs"
	"github.com/lepinkainen/feed-relay/internal/config"
	"github.com/lepinkainen/feed-relay/internal/mastodon"
	"github.com/lepinkainen/feed-relay/internal/metrics"
	"github.com/lepinkainen/feed-relay/internal/relay"
	"github.com/lepinkainen/feed-relay/pkg/database"
	httputil "github.com/lepinkainen/feed-relay/pkg/http"
	"github.com/lepinkainen/feed-relay/pkg/preview"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path (YAML or TOML)" default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Run struct {
		DryRun     bool   `help:"Log posts instead of publishing them"`
		Visibility string `help:"Override the configured status visibility (public, unlisted, private, direct)"`
	} `cmd:"" default:"1" help:"Publish new feed entries to Mastodon."`

	Preview struct {
		Index int `help:"Print the post at this index (0-based) to stdout instead of opening the TUI" default:"-1"`
	} `cmd:"" help:"Preview the posts a run would publish without publishing or recording them."`

	Stats struct{} `cmd:"" help:"Show dedup store statistics."`

	InitConfig struct {
		Outfile string `help:"Output file path" short:"o" default:"config.yaml"`
		Force   bool   `help:"Overwrite an existing file"`
	} `cmd:"" help:"Write an example configuration file."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("feed-relay"),
		kong.Description("Relay syndication feed entries to a Mastodon account."),
	)

	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch kctx.Command() {
	case "run":
		err = runRelay(ctx)
	case "preview":
		err = previewPosts(ctx, CLI.Preview.Index)
	case "stats":
		err = showStats(ctx)
	case "init-config":
		err = initConfig(CLI.InitConfig.Outfile, CLI.InitConfig.Force)
	default:
		panic(kctx.Command())
	}

	if err != nil {
		stop()
		slog.Error("feed-relay failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration file and applies command line overrides
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx, CLI.Config)
	if err != nil {
		return nil, err
	}

	if CLI.Run.DryRun {
		cfg.Posting.DryRun = true
	}
	if CLI.Run.Visibility != "" {
		cfg.Posting.Visibility = CLI.Run.Visibility
	}

	slog.Debug("Loaded configuration", "path", cfg.Path(), "feeds", len(cfg.Feeds),
		"content_warnings", len(cfg.ContentWarnings), "hashtags", len(cfg.Filters.Hashtags))
	return cfg, nil
}

func newFetcher(cfg *config.Config) *relay.HTTPFetcher {
	httpConfig := httputil.DefaultConfig()
	httpConfig.Timeout = cfg.HTTP.Timeout
	httpConfig.UserAgent = cfg.HTTP.UserAgent
	return relay.NewHTTPFetcher(httpConfig)
}

// newPublisher returns the Mastodon client after verifying its credentials, or a
// logging publisher in dry-run mode
func newPublisher(ctx context.Context, cfg *config.Config) (relay.Publisher, error) {
	if cfg.Posting.DryRun {
		slog.Info("Dry run enabled, posts will only be logged")
		return mastodon.DryRunPublisher{}, nil
	}

	client, err := mastodon.NewClient(cfg.MastodonConfig())
	if err != nil {
		return nil, err
	}

	account, err := client.VerifyCredentials(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Authenticated with Mastodon", "account", account.Acct, "instance", cfg.Mastodon.BaseURL)

	return client, nil
}

func runRelay(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", cfg.Path(), err)
	}

	store, err := database.OpenPostedStore(ctx, cfg.DatabaseConfig())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	opts := cfg.RelayOptions()
	opts.Recorder = collector

	r := relay.New(store, newFetcher(cfg), publisher, opts)
	_, runErr := r.Run(ctx, cfg.Sources())

	collector.RunFinished(time.Now(), runErr)
	if cfg.Metrics.TextfilePath != "" {
		if err := collector.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			slog.Error("Failed to write metrics", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}

	return runErr
}

func previewPosts(ctx context.Context, index int) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	// Preview never posts, so credentials are not required
	cfg.Posting.DryRun = true
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", cfg.Path(), err)
	}

	store, err := database.OpenPostedStore(ctx, cfg.DatabaseConfig())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	r := relay.New(store, newFetcher(cfg), nil, cfg.RelayOptions())
	pending, err := r.Prepare(ctx, cfg.Sources())
	if err != nil {
		if !errors.Is(err, relay.ErrFeedFailed) {
			return err
		}
		slog.Warn("Some feeds could not be previewed", "error", err)
	}

	if index >= 0 {
		if index >= len(pending) {
			return fmt.Errorf("index %d out of range, %d posts pending", index, len(pending))
		}
		fmt.Println(preview.FormatDetailedItem(pending[index]))
		return nil
	}

	return preview.Run(pending, cfg.Posting.Visibility)
}

// openExistingStore opens the dedup store without creating a new SQLite file
func openExistingStore(ctx context.Context, cfg *config.Config) (*database.PostedStore, error) {
	dbConfig := cfg.DatabaseConfig()
	if dbConfig.Driver != database.DriverPostgres && !database.DatabaseExists(dbConfig.Path) {
		return nil, fmt.Errorf("no database at %s, nothing has been posted yet", dbConfig.Path)
	}
	return database.OpenPostedStore(ctx, dbConfig)
}

func showStats(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	store, err := openExistingStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}

	info, err := database.GetDatabaseInfo(ctx, store.Database())
	if err != nil {
		return err
	}

	if cfg.Persistence.Driver == database.DriverPostgres {
		fmt.Println("Database: postgres")
	} else {
		fmt.Printf("Database: %s (%s)\n", cfg.Persistence.DatabasePath, cfg.Persistence.Driver)
	}
	fmt.Printf("Posted links: %d\n", count)
	for _, key := range []string{"sqlite_version", "server_version", "file_size_bytes"} {
		if value, ok := info[key]; ok {
			fmt.Printf("%s: %v\n", key, value)
		}
	}
	fmt.Printf("Feeds configured: %d\n", len(cfg.Feeds))

	return nil
}

func initConfig(outfile string, force bool) error {
	if !force {
		if _, err := os.Stat(outfile); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", outfile)
		}
	}

	if err := os.WriteFile(outfile, configs.ExampleConfig, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outfile, err)
	}

	fmt.Printf("Wrote example configuration to %s\n", outfile)
	return nil
}
