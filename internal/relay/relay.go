// Package relay reads feed entries and publishes the new ones, recording each published
// link so it is posted only once.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/feed-relay/internal/filters"
	"github.com/lepinkainen/feed-relay/pkg/textutil"
)

// DefaultMaxDescriptionLength is the description length limit used when none is configured
const DefaultMaxDescriptionLength = 300

// DefaultLanguage is the language posts are tagged with when none is configured
const DefaultLanguage = "en"

// Options configures the entry pipeline
type Options struct {
	Rules                []filters.ContentWarningRule
	Hashtags             []string
	MaxDescriptionLength int
	Language             string
	Recorder             Recorder
}

// Relay runs the fetch, filter, publish and record sequence over a list of feeds
type Relay struct {
	store     DedupStore
	fetcher   FeedFetcher
	publisher Publisher
	recorder  Recorder

	scanner              *filters.Scanner
	rewriter             *filters.Rewriter
	maxDescriptionLength int
	language             string
}

// New creates a relay. The publisher may be nil when only Prepare is used.
func New(store DedupStore, fetcher FeedFetcher, publisher Publisher, opts Options) *Relay {
	if opts.MaxDescriptionLength <= 0 {
		opts.MaxDescriptionLength = DefaultMaxDescriptionLength
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Relay{
		store:                store,
		fetcher:              fetcher,
		publisher:            publisher,
		recorder:             opts.Recorder,
		scanner:              filters.NewScanner(opts.Rules),
		rewriter:             filters.NewRewriter(opts.Hashtags),
		maxDescriptionLength: opts.MaxDescriptionLength,
		language:             opts.Language,
	}
}

// Run processes every feed in order and publishes each entry that has not been posted yet.
//
// A feed that cannot be fetched is skipped and reported in the returned error after the
// remaining feeds have been processed. Store and publish failures stop the run immediately.
func (r *Relay) Run(ctx context.Context, feeds []FeedSource) (Summary, error) {
	if r.publisher == nil {
		return Summary{}, errors.New("relay has no publisher")
	}

	summary := Summary{Skipped: make(map[SkipReason]int)}
	var feedErrs []error

	for _, feed := range feeds {
		items, err := r.fetch(ctx, feed)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			summary.FeedsFailed++
			feedErrs = append(feedErrs, err)
			continue
		}

		for _, item := range items {
			pending, reason, err := r.prepareItem(ctx, feed, item)
			if err != nil {
				return summary, err
			}
			if reason != "" {
				summary.Skipped[reason]++
				continue
			}

			if err := r.publish(ctx, pending); err != nil {
				return summary, err
			}
			summary.Posted++
		}
	}

	slog.Info("Relay run finished",
		"posted", summary.Posted,
		"skipped", summary.TotalSkipped(),
		"feeds_failed", summary.FeedsFailed)

	return summary, errors.Join(feedErrs...)
}

// Prepare builds the posts a run would publish without publishing or recording anything
func (r *Relay) Prepare(ctx context.Context, feeds []FeedSource) ([]PendingPost, error) {
	var pending []PendingPost
	var feedErrs []error

	for _, feed := range feeds {
		items, err := r.fetch(ctx, feed)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return pending, ctxErr
			}
			feedErrs = append(feedErrs, err)
			continue
		}

		for _, item := range items {
			post, reason, err := r.prepareItem(ctx, feed, item)
			if err != nil {
				return pending, err
			}
			if reason == "" {
				pending = append(pending, post)
			}
		}
	}

	return pending, errors.Join(feedErrs...)
}

func (r *Relay) fetch(ctx context.Context, feed FeedSource) ([]FeedItem, error) {
	items, err := r.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		slog.Error("Failed to fetch feed", "feed", feed.Label, "url", feed.URL, "error", err)
		r.recorder.FeedFailed(feed.Label)
		return nil, fmt.Errorf("%w: %s (%s): %w", ErrFeedFailed, feed.Label, feed.URL, err)
	}

	slog.Debug("Fetched feed", "feed", feed.Label, "url", feed.URL, "items", len(items))
	return items, nil
}

// prepareItem returns the post for item, or the reason it must be skipped
func (r *Relay) prepareItem(ctx context.Context, feed FeedSource, item FeedItem) (PendingPost, SkipReason, error) {
	if item.Link == nil {
		return r.skip(feed, "", SkipMissingLink)
	}
	link := *item.Link

	posted, err := r.store.WasPosted(ctx, link)
	if err != nil {
		return PendingPost{}, "", fmt.Errorf("failed to check %s: %w", link, err)
	}
	if posted {
		return r.skip(feed, link, SkipAlreadyPosted)
	}

	if item.Title == nil {
		return r.skip(feed, link, SkipMissingTitle)
	}
	if item.Description == nil {
		return r.skip(feed, link, SkipMissingDescription)
	}

	labels := r.scanner.Scan(strings.ToUpper(*item.Title), strings.ToUpper(*item.Description))

	title := r.rewriter.Rewrite(*item.Title)
	description := r.rewriter.Rewrite(textutil.StripHTML(*item.Description))
	description = textutil.Truncate(description, r.maxDescriptionLength)

	return PendingPost{
		Feed: feed,
		Link: link,
		Post: ComposePost(feed.Label, title, description, link, labels, r.language),
	}, "", nil
}

func (r *Relay) skip(feed FeedSource, link string, reason SkipReason) (PendingPost, SkipReason, error) {
	slog.Info("Skipping entry", "feed", feed.Label, "url", link, "reason", reason)
	r.recorder.Skipped(feed.Label, reason)
	return PendingPost{}, reason, nil
}

// publish sends the post and records its link. The link is recorded only after the
// publisher accepted the post.
func (r *Relay) publish(ctx context.Context, pending PendingPost) error {
	if err := r.publisher.Publish(ctx, pending.Post); err != nil {
		return fmt.Errorf("failed to publish %s: %w", pending.Link, err)
	}

	if err := r.store.MarkPosted(ctx, pending.Link); err != nil {
		return fmt.Errorf("failed to record %s as posted: %w", pending.Link, err)
	}

	slog.Info("Posted entry", "feed", pending.Feed.Label, "url", pending.Link)
	r.recorder.Posted(pending.Feed.Label)
	return nil
}

// ComposePost builds the status body and content warning for an entry
func ComposePost(label, title, description, link string, warnings []string, language string) PreparedPost {
	post := PreparedPost{
		Body:     fmt.Sprintf("Source: %s\n\n%s\n%s\n%s", label, title, description, link),
		Language: language,
	}

	if len(warnings) > 0 {
		spoiler := "CW: " + strings.Join(warnings, ",")
		post.SpoilerText = &spoiler
	}

	return post
}
