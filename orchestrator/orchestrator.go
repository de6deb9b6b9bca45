package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"tech-radar/logger"
	"tech-radar/models"
	"tech-radar/scraper"
)

// RunTracker records start/success/failure per adapter invocation.
// Satisfied by repositories.SourceRunRepository.
type RunTracker interface {
	StartRun(ctx context.Context, source string) (primitive.ObjectID, error)
	CompleteRun(ctx context.Context, id primitive.ObjectID, itemsFound, itemsNew int) error
	FailRun(ctx context.Context, id primitive.ObjectID, message string) error
}

// ArticleWriter persists normalized items idempotently by source URL.
// Satisfied by repositories.ArticleRepository.
type ArticleWriter interface {
	InsertIfAbsent(ctx context.Context, a *models.Article) (bool, error)
}

// CustomSourceLister supplies the user-registered feed sources scanned
// alongside built-ins. Satisfied by repositories.CustomSourceRepository.
type CustomSourceLister interface {
	ListActive(ctx context.Context) ([]models.CustomSource, error)
}

// SourceResult is the outcome of one adapter invocation within a scan.
type SourceResult struct {
	Source     string `json:"source"`
	ItemsFound int    `json:"items_found"`
	ItemsNew   int    `json:"items_new"`
	Error      string `json:"error,omitempty"`
}

// ScanStats aggregates one full scan across every source.
type ScanStats struct {
	TotalFound     int            `json:"total_found"`
	TotalNew       int            `json:"total_new"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Results        []SourceResult `json:"results"`
}

// Orchestrator invokes every registered source exactly once per scan in
// three concurrency tiers: feeds in parallel, APIs in parallel, scrapes
// strictly sequential. A single source's failure never aborts the scan.
type Orchestrator struct {
	registry *scraper.Registry
	tracker  RunTracker
	articles ArticleWriter
	custom   CustomSourceLister
}

func New(registry *scraper.Registry, tracker RunTracker, articles ArticleWriter, custom CustomSourceLister) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		tracker:  tracker,
		articles: articles,
		custom:   custom,
	}
}

// RunAll executes one full scan and returns aggregate stats.
func (o *Orchestrator) RunAll(ctx context.Context) *ScanStats {
	scanID := uuid.NewString()
	startedAt := time.Now()
	logger.InfoWithFields("scan starting", logger.Fields{"scan_id": scanID})

	var (
		mu      sync.Mutex
		results []SourceResult
	)
	collect := func(res SourceResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	}

	// Tier 1: feeds, fully parallel. Custom sources are feeds too.
	feeds := o.registry.ByKind(scraper.KindFeed)
	feeds = append(feeds, o.customSources(ctx)...)
	runParallel(ctx, feeds, o, collect)

	// Tier 2: API sources, parallel; each manages its own fan-out.
	runParallel(ctx, o.registry.ByKind(scraper.KindAPI), o, collect)

	// Tier 3: scrapes, strictly sequential.
	for _, s := range o.registry.ByKind(scraper.KindScrape) {
		collect(o.runSource(ctx, s))
	}

	stats := &ScanStats{Results: results}
	for _, r := range results {
		stats.TotalFound += r.ItemsFound
		stats.TotalNew += r.ItemsNew
	}
	stats.ElapsedSeconds = time.Since(startedAt).Seconds()

	logger.InfoWithFields("scan done", logger.Fields{
		"scan_id":     scanID,
		"total_found": stats.TotalFound,
		"total_new":   stats.TotalNew,
		"elapsed_s":   fmt.Sprintf("%.1f", stats.ElapsedSeconds),
	})
	return stats
}

func runParallel(ctx context.Context, sources []*scraper.Source, o *Orchestrator, collect func(SourceResult)) {
	var g errgroup.Group
	for _, s := range sources {
		g.Go(func() error {
			collect(o.runSource(ctx, s))
			// failures are folded into the result, never propagated
			return nil
		})
	}
	g.Wait()
}

// RunSource triggers a single named source out of band, using the same run
// tracking and upsert path as a full scan. Works for both built-in and
// user-registered sources.
func (o *Orchestrator) RunSource(ctx context.Context, name string) (*SourceResult, error) {
	if s, ok := o.registry.Get(name); ok {
		res := o.runSource(ctx, s)
		return &res, nil
	}
	for _, s := range o.customSources(ctx) {
		if s.Name() == name {
			res := o.runSource(ctx, s)
			return &res, nil
		}
	}
	return nil, fmt.Errorf("unknown source: %s", name)
}

// runSource wraps one adapter invocation with run tracking and idempotent
// persistence. Every invocation ends in exactly one terminal run record.
func (o *Orchestrator) runSource(ctx context.Context, s *scraper.Source) SourceResult {
	runID, err := o.tracker.StartRun(ctx, s.Name())
	if err != nil {
		logger.Log.Errorf("[%s] failed to record run start: %v", s.Name(), err)
		return SourceResult{Source: s.Name(), Error: err.Error()}
	}

	items, err := s.Run(ctx)
	if err != nil {
		if ferr := o.tracker.FailRun(ctx, runID, err.Error()); ferr != nil {
			logger.Log.Errorf("[%s] failed to record run failure: %v", s.Name(), ferr)
		}
		logger.Log.Errorf("[%s] failed: %v", s.Name(), err)
		return SourceResult{Source: s.Name(), Error: err.Error()}
	}

	inserted := 0
	for i := range items {
		isNew, err := o.articles.InsertIfAbsent(ctx, &items[i])
		if err != nil {
			logger.Log.Warnf("[%s] upsert failed for %s: %v", s.Name(), items[i].SourceURL, err)
			continue
		}
		if isNew {
			inserted++
		}
	}

	if err := o.tracker.CompleteRun(ctx, runID, len(items), inserted); err != nil {
		logger.Log.Errorf("[%s] failed to record run completion: %v", s.Name(), err)
	}
	logger.Log.Infof("[%s] %d found, %d new", s.Name(), len(items), inserted)
	return SourceResult{Source: s.Name(), ItemsFound: len(items), ItemsNew: inserted}
}

// customSources materializes the user-registered feeds as sources. A
// lookup failure degrades to built-ins only.
func (o *Orchestrator) customSources(ctx context.Context) []*scraper.Source {
	if o.custom == nil {
		return nil
	}
	rows, err := o.custom.ListActive(ctx)
	if err != nil {
		logger.Log.Errorf("failed to list custom sources: %v", err)
		return nil
	}
	out := make([]*scraper.Source, 0, len(rows))
	for _, row := range rows {
		out = append(out, scraper.NewSource(scraper.NewFeedAdapter(row.Name, row.FeedURL)))
	}
	return out
}

// IsBuiltinSource reports whether name belongs to a built-in adapter,
// used to reject colliding custom source registrations.
func (o *Orchestrator) IsBuiltinSource(name string) bool {
	return o.registry.IsBuiltin(name)
}

// SourceNames returns the built-in adapter names.
func (o *Orchestrator) SourceNames() []string {
	return o.registry.Names()
}
