package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/models"
	"tech-radar/scraper"
)

type fakeAdapter struct {
	name  string
	kind  scraper.Kind
	items []scraper.Item
	err   error
}

func (f *fakeAdapter) Name() string       { return f.name }
func (f *fakeAdapter) Kind() scraper.Kind { return f.kind }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]scraper.Item, error) {
	return f.items, f.err
}

type runRecord struct {
	source   string
	status   string
	found    int
	inserted int
	errMsg   string
}

type fakeTracker struct {
	mu   sync.Mutex
	runs map[primitive.ObjectID]*runRecord
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{runs: make(map[primitive.ObjectID]*runRecord)}
}

func (f *fakeTracker) StartRun(ctx context.Context, source string) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	f.runs[id] = &runRecord{source: source, status: models.RunStatusRunning}
	return id, nil
}

func (f *fakeTracker) CompleteRun(ctx context.Context, id primitive.ObjectID, found, inserted int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[id]
	r.status = models.RunStatusSuccess
	r.found = found
	r.inserted = inserted
	return nil
}

func (f *fakeTracker) FailRun(ctx context.Context, id primitive.ObjectID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[id]
	r.status = models.RunStatusFailed
	r.errMsg = message
	return nil
}

func (f *fakeTracker) bySource(source string) *runRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.source == source {
			return r
		}
	}
	return nil
}

type fakeWriter struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{seen: make(map[string]bool)}
}

func (f *fakeWriter) InsertIfAbsent(ctx context.Context, a *models.Article) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[a.SourceURL] {
		return false, nil
	}
	f.seen[a.SourceURL] = true
	return true, nil
}

type fakeCustomLister struct {
	rows []models.CustomSource
	err  error
}

func (f *fakeCustomLister) ListActive(ctx context.Context) ([]models.CustomSource, error) {
	return f.rows, f.err
}

func item(url string) scraper.Item {
	return scraper.Item{SourceURL: url, Title: "title for " + url}
}

func newTestOrchestrator(tracker *fakeTracker, writer *fakeWriter, adapters ...scraper.Adapter) *Orchestrator {
	sources := make([]*scraper.Source, len(adapters))
	for i, a := range adapters {
		sources[i] = scraper.NewSource(a, scraper.WithRetries(0))
	}
	return New(scraper.NewRegistryFromSources(sources...), tracker, writer, &fakeCustomLister{})
}

func TestRunAllAggregatesAcrossTiers(t *testing.T) {
	tracker := newFakeTracker()
	writer := newFakeWriter()
	o := newTestOrchestrator(tracker, writer,
		&fakeAdapter{name: "feed-a", kind: scraper.KindFeed, items: []scraper.Item{item("https://a/1"), item("https://a/2")}},
		&fakeAdapter{name: "api-b", kind: scraper.KindAPI, items: []scraper.Item{item("https://b/1")}},
		&fakeAdapter{name: "scrape-c", kind: scraper.KindScrape, items: []scraper.Item{item("https://c/1")}},
	)

	stats := o.RunAll(context.Background())
	assert.Equal(t, 4, stats.TotalFound)
	assert.Equal(t, 4, stats.TotalNew)
	assert.Len(t, stats.Results, 3)

	for _, name := range []string{"feed-a", "api-b", "scrape-c"} {
		run := tracker.bySource(name)
		require.NotNil(t, run, name)
		assert.Equal(t, models.RunStatusSuccess, run.status, name)
	}
}

func TestRunAllIsolatesAdapterFailures(t *testing.T) {
	tracker := newFakeTracker()
	writer := newFakeWriter()
	o := newTestOrchestrator(tracker, writer,
		&fakeAdapter{name: "broken", kind: scraper.KindFeed, err: errors.New("feed parse error")},
		&fakeAdapter{name: "healthy", kind: scraper.KindFeed, items: []scraper.Item{item("https://h/1")}},
	)

	stats := o.RunAll(context.Background())
	assert.Equal(t, 1, stats.TotalFound)
	assert.Equal(t, 1, stats.TotalNew)

	broken := tracker.bySource("broken")
	require.NotNil(t, broken)
	assert.Equal(t, models.RunStatusFailed, broken.status)
	assert.Contains(t, broken.errMsg, "feed parse error")

	healthy := tracker.bySource("healthy")
	require.NotNil(t, healthy)
	assert.Equal(t, models.RunStatusSuccess, healthy.status)
}

func TestRunAllIdempotentUpsert(t *testing.T) {
	tracker := newFakeTracker()
	writer := newFakeWriter()
	o := newTestOrchestrator(tracker, writer,
		&fakeAdapter{name: "feed-a", kind: scraper.KindFeed, items: []scraper.Item{item("https://a/1")}},
	)

	first := o.RunAll(context.Background())
	assert.Equal(t, 1, first.TotalNew)

	second := o.RunAll(context.Background())
	assert.Equal(t, 1, second.TotalFound)
	assert.Equal(t, 0, second.TotalNew)
}

func TestRunSourceByName(t *testing.T) {
	tracker := newFakeTracker()
	writer := newFakeWriter()
	o := newTestOrchestrator(tracker, writer,
		&fakeAdapter{name: "feed-a", kind: scraper.KindFeed, items: []scraper.Item{item("https://a/1")}},
	)

	res, err := o.RunSource(context.Background(), "feed-a")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsFound)
	assert.Equal(t, 1, res.ItemsNew)

	run := tracker.bySource("feed-a")
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusSuccess, run.status)
}

func TestRunSourceUnknownName(t *testing.T) {
	o := newTestOrchestrator(newFakeTracker(), newFakeWriter())
	_, err := o.RunSource(context.Background(), "nope")
	assert.Error(t, err)
}

func TestIsBuiltinSource(t *testing.T) {
	o := newTestOrchestrator(newFakeTracker(), newFakeWriter(),
		&fakeAdapter{name: "feed-a", kind: scraper.KindFeed},
	)
	assert.True(t, o.IsBuiltinSource("feed-a"))
	assert.False(t, o.IsBuiltinSource("custom-thing"))
}
