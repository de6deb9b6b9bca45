package scraper

import (
	"context"
	"strings"
	"time"

	"tech-radar/logger"
	"tech-radar/models"
)

const (
	defaultRetries = 2
	defaultDelay   = time.Second

	// maxSnippetLen bounds content_snippet; the full body is never stored.
	maxSnippetLen = 500

	titleFallback = "(no title)"
)

// Source wraps any Adapter with uniform retry, backoff and normalization.
// All adapters get the same failure behavior regardless of source kind.
type Source struct {
	adapter Adapter
	retries int
	delay   time.Duration
}

// Option tunes retry behavior for sources that need gentler handling.
type Option func(*Source)

func WithRetries(n int) Option {
	return func(s *Source) { s.retries = n }
}

func WithDelay(d time.Duration) Option {
	return func(s *Source) { s.delay = d }
}

func NewSource(a Adapter, opts ...Option) *Source {
	s := &Source{
		adapter: a,
		retries: defaultRetries,
		delay:   defaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return s.adapter.Name() }
func (s *Source) Kind() Kind   { return s.adapter.Kind() }

// Run fetches with linear backoff (delay * attempt) and normalizes the raw
// items. On retry exhaustion the last error is returned so the caller can
// record the failed run; nothing is swallowed at this layer.
func (s *Source) Run(ctx context.Context) ([]models.Article, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retries+1; attempt++ {
		items, err := s.adapter.Fetch(ctx)
		if err == nil {
			return normalize(s.adapter.Name(), items), nil
		}
		lastErr = err
		if attempt <= s.retries {
			logger.Log.Warnf("[%s] attempt %d failed: %v. retrying", s.adapter.Name(), attempt, err)
			if err := sleep(ctx, s.delay*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// normalize applies the uniform output contract: items without a resolvable
// URL are silently dropped, titles are trimmed with a placeholder fallback,
// snippets are truncated.
func normalize(source string, items []Item) []models.Article {
	out := make([]models.Article, 0, len(items))
	for _, item := range items {
		url := strings.TrimSpace(item.SourceURL)
		if url == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = titleFallback
		}
		out = append(out, models.Article{
			Source:         source,
			SourceURL:      url,
			Title:          title,
			ContentSnippet: truncate(item.ContentSnippet, maxSnippetLen),
			Author:         strings.TrimSpace(item.Author),
			PublishedAt:    item.PublishedAt,
			ImageURL:       item.ImageURL,
		})
	}
	return out
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
