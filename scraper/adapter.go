package scraper

import (
	"context"
	"time"
)

// Kind partitions adapters into the orchestrator's concurrency tiers.
type Kind string

const (
	// KindFeed sources are stateless syndication feeds, safe to fetch
	// fully in parallel.
	KindFeed Kind = "feed"
	// KindAPI sources call JSON/GraphQL APIs and manage their own
	// fan-out and rate limits internally.
	KindAPI Kind = "api"
	// KindScrape sources parse HTML pages and are run strictly
	// sequentially to avoid concurrent load on the scraped origin.
	KindScrape Kind = "scrape"
)

// Item is the raw-ish shape a concrete adapter produces. Normalization
// (title trim, snippet truncation, URL requirement) happens once in the
// Source wrapper, not in each adapter.
type Item struct {
	SourceURL      string
	Title          string
	ContentSnippet string
	Author         string
	PublishedAt    *time.Time
	ImageURL       string
}

// Adapter is anything that can fetch raw candidate items from one upstream
// origin. Retry, timeout and normalization are layered on by Source, so a
// concrete adapter only implements the fetch strategy.
type Adapter interface {
	Name() string
	Kind() Kind
	Fetch(ctx context.Context) ([]Item, error)
}
