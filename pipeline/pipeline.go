package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/config"
	"tech-radar/dedup"
	"tech-radar/logger"
	"tech-radar/models"
	"tech-radar/orchestrator"
)

// unscoredWindow bounds the dedup/scoring backlog to roughly one daily
// cycle with slack for schedule drift.
const unscoredWindow = 26 * time.Hour

// Scanner runs one full ingestion scan. Satisfied by
// orchestrator.Orchestrator.
type Scanner interface {
	RunAll(ctx context.Context) *orchestrator.ScanStats
}

// ArticleStore is the slice of the article repository the pipeline
// phases drive directly.
type ArticleStore interface {
	FindUnscored(ctx context.Context, since time.Time, limit int) ([]models.Article, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	DeleteStale(ctx context.Context, olderThan time.Time, minScoreToKeep float64) (int64, error)
}

// VectorJanitor sweeps vectors whose article was purged.
type VectorJanitor interface {
	SweepOrphans(ctx context.Context) (int64, error)
}

// Scorer judges and persists relevance, returning the relevant subset.
type Scorer interface {
	ScoreArticles(ctx context.Context, articles []models.Article) ([]models.Article, error)
}

// Summarizer writes briefs for the top of one cycle's relevant set.
type Summarizer interface {
	SummarizeTop(ctx context.Context, articles []models.Article) int
}

// Embedder embeds the pending backlog; nil when no embedding capability
// is configured.
type Embedder interface {
	EmbedPending(ctx context.Context) (int, error)
}

// Stats summarizes one pipeline cycle for logging and the admin API.
type Stats struct {
	Scan           *orchestrator.ScanStats `json:"scan"`
	Deduplicated   int64                   `json:"deduplicated"`
	Scored         int                     `json:"scored"`
	Relevant       int                     `json:"relevant"`
	Summarized     int                     `json:"summarized"`
	Embedded       int                     `json:"embedded"`
	Purged         int64                   `json:"purged"`
	OrphansSwept   int64                   `json:"orphans_swept"`
	ElapsedSeconds float64                 `json:"elapsed_seconds"`
}

// Pipeline is the daily cycle: scan, thin near-duplicates, score,
// summarize, embed, purge. Each phase tolerates the failures of the one
// before it; a broken phase is logged and the cycle moves on with
// whatever state is in the store.
type Pipeline struct {
	scanner    Scanner
	articles   ArticleStore
	vectors    VectorJanitor
	scorer     Scorer
	summarizer Summarizer
	embedder   Embedder
	retention  config.RetentionConfig
}

func New(scanner Scanner, articles ArticleStore, vectors VectorJanitor, scorer Scorer, summarizer Summarizer, embedder Embedder, cfg *config.AppConfig) *Pipeline {
	return &Pipeline{
		scanner:    scanner,
		articles:   articles,
		vectors:    vectors,
		scorer:     scorer,
		summarizer: summarizer,
		embedder:   embedder,
		retention:  cfg.Retention,
	}
}

// RunDaily executes one full cycle and never returns an error: phase
// failures are folded into the stats and logs. Only the process-level
// concerns (config, storage connectivity) are allowed to kill a run, and
// those surface before the pipeline exists.
func (p *Pipeline) RunDaily(ctx context.Context) *Stats {
	startedAt := time.Now()
	stats := &Stats{}

	stats.Scan = p.scanner.RunAll(ctx)

	unscored, err := p.articles.FindUnscored(ctx, time.Now().Add(-unscoredWindow), 0)
	if err != nil {
		logger.Log.Errorf("pipeline: failed to load unscored backlog: %v", err)
		unscored = nil
	}

	kept, dropped := dedup.Filter(unscored)
	if len(dropped) > 0 {
		ids := make([]primitive.ObjectID, len(dropped))
		for i := range dropped {
			ids[i] = dropped[i].ID
		}
		n, err := p.articles.DeleteByIDs(ctx, ids)
		if err != nil {
			logger.Log.Errorf("pipeline: failed to thin duplicates: %v", err)
		}
		stats.Deduplicated = n
	}

	relevant, err := p.scorer.ScoreArticles(ctx, kept)
	if err != nil {
		logger.Log.Errorf("pipeline: scoring failed: %v", err)
	}
	stats.Scored = len(kept)
	stats.Relevant = len(relevant)

	stats.Summarized = p.summarizer.SummarizeTop(ctx, relevant)

	if p.embedder != nil {
		n, err := p.embedder.EmbedPending(ctx)
		if err != nil {
			logger.Log.Errorf("pipeline: embedding failed: %v", err)
		}
		stats.Embedded = n
	} else {
		logger.Log.Infof("pipeline: embedding skipped, no vector capability")
	}

	p.purge(ctx, stats)

	stats.ElapsedSeconds = time.Since(startedAt).Seconds()
	logger.InfoWithFields("pipeline cycle done", logger.Fields{
		"found":      stats.Scan.TotalFound,
		"new":        stats.Scan.TotalNew,
		"deduped":    stats.Deduplicated,
		"relevant":   stats.Relevant,
		"summarized": stats.Summarized,
		"embedded":   stats.Embedded,
		"purged":     stats.Purged,
		"elapsed_s":  stats.ElapsedSeconds,
	})
	return stats
}

// purge applies the retention policy and sweeps vectors orphaned by it.
func (p *Pipeline) purge(ctx context.Context, stats *Stats) {
	cutoff := time.Now().AddDate(0, 0, -p.retention.MaxAgeDays)
	purged, err := p.articles.DeleteStale(ctx, cutoff, p.retention.MinScoreToKeep)
	if err != nil {
		logger.Log.Errorf("pipeline: retention purge failed: %v", err)
		return
	}
	stats.Purged = purged

	swept, err := p.vectors.SweepOrphans(ctx)
	if err != nil {
		logger.Log.Errorf("pipeline: orphan vector sweep failed: %v", err)
		return
	}
	stats.OrphansSwept = swept
}
