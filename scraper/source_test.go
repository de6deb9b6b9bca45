package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name     string
	kind     Kind
	items    []Item
	failures int
	calls    int
}

func (f *fakeAdapter) Name() string { return f.name }
func (f *fakeAdapter) Kind() Kind   { return f.kind }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]Item, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream unavailable")
	}
	return f.items, nil
}

func TestSourceRetriesUntilSuccess(t *testing.T) {
	adapter := &fakeAdapter{
		name:     "flaky",
		kind:     KindFeed,
		failures: 2,
		items:    []Item{{SourceURL: "https://example.com/a", Title: "A"}},
	}
	s := NewSource(adapter, WithDelay(time.Millisecond))

	articles, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, 3, adapter.calls)
}

func TestSourceReturnsLastErrorAfterExhaustion(t *testing.T) {
	adapter := &fakeAdapter{name: "dead", kind: KindFeed, failures: 10}
	s := NewSource(adapter, WithRetries(2), WithDelay(time.Millisecond))

	articles, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, articles)
	// 1 initial attempt + 2 retries
	assert.Equal(t, 3, adapter.calls)
}

func TestSourceStopsRetryingOnCancelledContext(t *testing.T) {
	adapter := &fakeAdapter{name: "slow", kind: KindFeed, failures: 10}
	s := NewSource(adapter, WithDelay(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, adapter.calls)
}

func TestNormalizeDropsItemsWithoutURL(t *testing.T) {
	adapter := &fakeAdapter{
		name: "messy",
		kind: KindFeed,
		items: []Item{
			{SourceURL: "", Title: "no url"},
			{SourceURL: "   ", Title: "blank url"},
			{SourceURL: "https://example.com/keep", Title: "keep"},
		},
	}
	s := NewSource(adapter)

	articles, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://example.com/keep", articles[0].SourceURL)
}

func TestNormalizeTitleFallbackAndSnippetTruncation(t *testing.T) {
	longSnippet := strings.Repeat("x", 2*maxSnippetLen)
	adapter := &fakeAdapter{
		name: "messy",
		kind: KindFeed,
		items: []Item{
			{SourceURL: "https://example.com/a", Title: "  ", ContentSnippet: longSnippet},
		},
	}
	s := NewSource(adapter)

	articles, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, titleFallback, articles[0].Title)
	assert.Len(t, []rune(articles[0].ContentSnippet), maxSnippetLen)
	assert.Equal(t, "messy", articles[0].Source)
}

func TestTruncateIsRuneSafe(t *testing.T) {
	s := strings.Repeat("한", 10)
	out := truncate(s, 4)
	assert.Equal(t, "한한한한", out)
}
