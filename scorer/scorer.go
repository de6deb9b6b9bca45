package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/config"
	"tech-radar/llm"
	"tech-radar/logger"
	"tech-radar/models"
)

// promptSnippetLen bounds the snippet sent per article. Full bodies never
// go to the judge.
const promptSnippetLen = 200

const systemInstruction = `You are a relevance judge for a tech news radar aimed at working software engineers.
For every article you receive, assign:
1. "score": a relevance number between 0.0 and 1.0. High scores go to substantive engineering news: model releases, framework/library releases, infrastructure changes, security advisories, notable technical writeups. Low scores go to listicles, career fluff, product marketing and anything off-topic.
2. "categories": one or two of exactly these values: "ai", "stack", "devops", "trend".
3. "tags": up to five short free-form lowercase topic tags.
Respond with ONLY a JSON array, one object per input article, each shaped as {"index": <input index>, "score": <0..1>, "categories": [...], "tags": [...]}.
Do not wrap the array in a markdown code block and do not add commentary.`

// ScoreStore is the slice of the article repository the scorer needs.
type ScoreStore interface {
	UpdateScore(ctx context.Context, id primitive.ObjectID, score float64, categories, tags []string) error
}

// KeywordLister supplies the active watch keywords that steer the judge.
type KeywordLister interface {
	ListActive(ctx context.Context) ([]models.WatchKeyword, error)
}

// Scorer batches unscored articles to the LLM judge and persists the
// results. Batches run strictly one after another; a failed batch is
// zero-scored and the next batch still runs.
type Scorer struct {
	judge         llm.Judge
	store         ScoreStore
	keywords      KeywordLister
	batchSize     int
	keepThreshold float64
}

func New(judge llm.Judge, store ScoreStore, keywords KeywordLister, cfg *config.AppConfig) *Scorer {
	return &Scorer{
		judge:         judge,
		store:         store,
		keywords:      keywords,
		batchSize:     cfg.Scoring.BatchSize,
		keepThreshold: cfg.Scoring.KeepThreshold,
	}
}

type promptItem struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Snippet string `json:"snippet,omitempty"`
}

type scoredItem struct {
	Index      int      `json:"index"`
	Score      float64  `json:"score"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// ScoreArticles judges every given article, persists all scores, and
// returns only the subset at or above the keep threshold. Every input
// article ends up scored in storage, including zero-scored failures.
func (s *Scorer) ScoreArticles(ctx context.Context, articles []models.Article) ([]models.Article, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	keywordBlock := s.keywordBlock(ctx)
	relevant := make([]models.Article, 0, len(articles))

	batches := (len(articles) + s.batchSize - 1) / s.batchSize
	for b := 0; b < batches; b++ {
		start := b * s.batchSize
		end := start + s.batchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := articles[start:end]

		scores, err := s.judgeBatch(ctx, batch, keywordBlock)
		if err != nil {
			logger.Log.Errorf("scoring batch %d/%d failed, zero-scoring %d articles: %v", b+1, batches, len(batch), err)
			scores = make([]scoredItem, len(batch))
			for i := range scores {
				scores[i] = scoredItem{Index: i, Score: 0, Categories: []string{}, Tags: []string{}}
			}
		}

		for i := range batch {
			item := scores[i]
			if err := s.store.UpdateScore(ctx, batch[i].ID, item.Score, item.Categories, item.Tags); err != nil {
				logger.Log.Errorf("failed to persist score for %s: %v", batch[i].ID.Hex(), err)
				continue
			}
			if item.Score >= s.keepThreshold {
				kept := batch[i]
				kept.RelevanceScore = &item.Score
				kept.Categories = item.Categories
				kept.Tags = item.Tags
				relevant = append(relevant, kept)
			}
		}
	}

	logger.Log.Infof("scored %d articles, %d relevant (threshold %.2f)", len(articles), len(relevant), s.keepThreshold)
	return relevant, nil
}

// judgeBatch sends one batch to the judge and returns results positionally
// aligned with the batch. Items the judge skipped come back zero-scored.
func (s *Scorer) judgeBatch(ctx context.Context, batch []models.Article, keywordBlock string) ([]scoredItem, error) {
	items := make([]promptItem, len(batch))
	for i, a := range batch {
		items[i] = promptItem{
			Index:   i,
			Title:   a.Title,
			Source:  a.Source,
			Snippet: truncate(a.ContentSnippet, promptSnippetLen),
		}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	var prompt strings.Builder
	if keywordBlock != "" {
		prompt.WriteString("Topics currently on the radar, weighted by priority:\n")
		prompt.WriteString(keywordBlock)
		prompt.WriteString("\nScore higher when an article matches a watched topic; use general judgment for everything else.\n\n")
	}
	prompt.WriteString("Articles:\n")
	prompt.Write(payload)

	raw, err := s.judge.Generate(ctx, systemInstruction, prompt.String())
	if err != nil {
		return nil, err
	}

	arr, err := llm.ExtractJSONArray(raw)
	if err != nil {
		return nil, fmt.Errorf("judge response unusable: %w", err)
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &rawItems); err != nil {
		return nil, fmt.Errorf("failed to parse judge response: %w", err)
	}

	out := make([]scoredItem, len(batch))
	for i := range out {
		out[i] = scoredItem{Index: i, Categories: []string{}, Tags: []string{}}
	}
	for _, raw := range rawItems {
		var item scoredItem
		// a single malformed entry is discarded, not the whole batch
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Log.Warnf("discarding malformed judge entry: %v", err)
			continue
		}
		if item.Index < 0 || item.Index >= len(batch) {
			continue
		}
		out[item.Index] = sanitize(item)
	}
	return out, nil
}

// sanitize clamps the score into [0,1] and keeps at most two valid
// categories.
func sanitize(item scoredItem) scoredItem {
	if item.Score < 0 {
		item.Score = 0
	}
	if item.Score > 1 {
		item.Score = 1
	}

	cats := make([]string, 0, 2)
	for _, c := range item.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if !validCategory(c) {
			continue
		}
		cats = append(cats, c)
		if len(cats) == 2 {
			break
		}
	}
	item.Categories = cats

	if item.Tags == nil {
		item.Tags = []string{}
	} else if len(item.Tags) > 5 {
		item.Tags = item.Tags[:5]
	}
	return item
}

func validCategory(c string) bool {
	for _, v := range models.ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// keywordBlock renders the active watch keywords grouped by category,
// highest priority first. An empty or unavailable keyword set yields an
// empty block, which leaves the judge to its general instructions.
func (s *Scorer) keywordBlock(ctx context.Context) string {
	if s.keywords == nil {
		return ""
	}
	kws, err := s.keywords.ListActive(ctx)
	if err != nil {
		logger.Log.Warnf("failed to load watch keywords, scoring without them: %v", err)
		return ""
	}
	if len(kws) == 0 {
		return ""
	}

	byCategory := make(map[string][]models.WatchKeyword)
	for _, kw := range kws {
		byCategory[kw.Category] = append(byCategory[kw.Category], kw)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, c := range categories {
		group := byCategory[c]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Priority > group[j].Priority })
		parts := make([]string, len(group))
		for i, kw := range group {
			parts[i] = fmt.Sprintf("%s (priority %d)", kw.Keyword, kw.Priority)
		}
		fmt.Fprintf(&b, "- %s: %s\n", c, strings.Join(parts, ", "))
	}
	return b.String()
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
