package scraper

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
)

// feedItemLimit bounds how many entries are taken from one feed per scan.
const feedItemLimit = 30

// FeedAdapter wraps one RSS/Atom feed. It serves both the built-in feed
// list from config.yaml and user-registered custom sources.
type FeedAdapter struct {
	name    string
	feedURL string
}

func NewFeedAdapter(name, feedURL string) *FeedAdapter {
	return &FeedAdapter{name: name, feedURL: feedURL}
}

func (f *FeedAdapter) Name() string { return f.name }
func (f *FeedAdapter) Kind() Kind   { return KindFeed }

func (f *FeedAdapter) Fetch(ctx context.Context) ([]Item, error) {
	fp := gofeed.NewParser()
	fp.Client = httpClient

	feed, err := fp.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if len(entries) > feedItemLimit {
		entries = entries[:feedItemLimit]
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, Item{
			SourceURL:      entry.Link,
			Title:          entry.Title,
			ContentSnippet: feedSnippet(entry),
			Author:         feedAuthor(entry),
			PublishedAt:    feedPublished(entry),
			ImageURL:       ExtractFeedImage(entry),
		})
	}
	return items, nil
}

func feedSnippet(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

func feedAuthor(entry *gofeed.Item) string {
	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		return entry.Authors[0].Name
	}
	return ""
}

func feedPublished(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}
