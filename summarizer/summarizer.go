package summarizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/config"
	"tech-radar/llm"
	"tech-radar/logger"
	"tech-radar/models"
)

const systemInstruction = `You are a tech news editor writing one-paragraph briefs for busy software engineers.
Summarize the article below in 2-3 plain sentences: what happened and why an engineer would care.
No preamble, no markdown, no bullet points. Respond with the summary text only.`

// SummaryStore is the slice of the article repository the summarizer
// needs. Summaries are a partial update; score, categories and tags are
// never touched from here.
type SummaryStore interface {
	UpdateSummary(ctx context.Context, id primitive.ObjectID, summary string) error
}

// Summarizer writes short briefs for the top scored articles of a cycle.
// Calls fan out in parallel and settle independently; one failed summary
// never blocks or discards the others.
type Summarizer struct {
	judge       llm.Judge
	store       SummaryStore
	maxArticles int
}

func New(judge llm.Judge, store SummaryStore, cfg *config.AppConfig) *Summarizer {
	return &Summarizer{
		judge:       judge,
		store:       store,
		maxArticles: cfg.Summary.MaxArticles,
	}
}

// SummarizeTop picks the highest-scored articles that have content and no
// summary yet, generates a brief for each in parallel, and persists the
// successes. Returns the number of summaries written.
func (s *Summarizer) SummarizeTop(ctx context.Context, articles []models.Article) int {
	selected := s.selectTop(articles)
	if len(selected) == 0 {
		return 0
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		written int
	)
	for _, a := range selected {
		wg.Add(1)
		go func(a models.Article) {
			defer wg.Done()
			summary, err := s.summarizeOne(ctx, a)
			if err != nil {
				logger.Log.Warnf("summary failed for %q: %v", a.Title, err)
				return
			}
			if err := s.store.UpdateSummary(ctx, a.ID, summary); err != nil {
				logger.Log.Errorf("failed to persist summary for %s: %v", a.ID.Hex(), err)
				return
			}
			mu.Lock()
			written++
			mu.Unlock()
		}(a)
	}
	wg.Wait()

	logger.Log.Infof("summarized %d/%d selected articles", written, len(selected))
	return written
}

// selectTop returns up to maxArticles by descending score, skipping
// articles with nothing to summarize or an existing summary.
func (s *Summarizer) selectTop(articles []models.Article) []models.Article {
	candidates := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.Summary != "" || strings.TrimSpace(a.ContentSnippet) == "" {
			continue
		}
		candidates = append(candidates, a)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return score(candidates[i]) > score(candidates[j])
	})
	if len(candidates) > s.maxArticles {
		candidates = candidates[:s.maxArticles]
	}
	return candidates
}

func (s *Summarizer) summarizeOne(ctx context.Context, a models.Article) (string, error) {
	prompt := fmt.Sprintf("Title: %s\nSource: %s\nContent: %s", a.Title, a.Source, a.ContentSnippet)
	text, err := s.judge.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", fmt.Errorf("empty summary returned")
	}
	return summary, nil
}

func score(a models.Article) float64 {
	if a.RelevanceScore == nil {
		return 0
	}
	return *a.RelevanceScore
}
