package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/config"
	"tech-radar/models"
)

type fakeJudge struct {
	mu       sync.Mutex
	failFor  map[string]bool
	prompts  []string
	response string
}

func (f *fakeJudge) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	for needle := range f.failFor {
		if strings.Contains(prompt, needle) {
			return "", errors.New("model error")
		}
	}
	if f.response != "" {
		return f.response, nil
	}
	return "A short summary.", nil
}

type fakeSummaryStore struct {
	mu        sync.Mutex
	summaries map[primitive.ObjectID]string
	err       error
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{summaries: make(map[primitive.ObjectID]string)}
}

func (f *fakeSummaryStore) UpdateSummary(ctx context.Context, id primitive.ObjectID, summary string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.summaries[id] = summary
	return nil
}

func testConfig(maxArticles int) *config.AppConfig {
	return &config.AppConfig{Summary: config.SummaryConfig{MaxArticles: maxArticles}}
}

func scored(title string, score float64) models.Article {
	return models.Article{
		ID:             primitive.NewObjectID(),
		Title:          title,
		Source:         "test",
		ContentSnippet: "content for " + title,
		RelevanceScore: &score,
	}
}

func TestSummarizeTopSelectsByScore(t *testing.T) {
	judge := &fakeJudge{}
	store := newFakeSummaryStore()
	s := New(judge, store, testConfig(2))

	articles := []models.Article{
		scored("low", 0.5),
		scored("high", 0.9),
		scored("mid", 0.7),
	}
	written := s.SummarizeTop(context.Background(), articles)
	assert.Equal(t, 2, written)

	// only the top two got summaries
	assert.Contains(t, store.summaries, articles[1].ID)
	assert.Contains(t, store.summaries, articles[2].ID)
	assert.NotContains(t, store.summaries, articles[0].ID)
}

func TestSummarizeTopSkipsEmptyContentAndExistingSummaries(t *testing.T) {
	judge := &fakeJudge{}
	store := newFakeSummaryStore()
	s := New(judge, store, testConfig(10))

	empty := scored("no content", 0.9)
	empty.ContentSnippet = "  "
	done := scored("already summarized", 0.9)
	done.Summary = "existing"
	fresh := scored("fresh", 0.8)

	written := s.SummarizeTop(context.Background(), []models.Article{empty, done, fresh})
	assert.Equal(t, 1, written)
	assert.Contains(t, store.summaries, fresh.ID)
}

func TestSummarizeTopIsolatesFailures(t *testing.T) {
	judge := &fakeJudge{failFor: map[string]bool{"poison": true}}
	store := newFakeSummaryStore()
	s := New(judge, store, testConfig(10))

	articles := []models.Article{
		scored("poison article", 0.9),
		scored("healthy one", 0.8),
		scored("healthy two", 0.7),
	}
	written := s.SummarizeTop(context.Background(), articles)
	assert.Equal(t, 2, written)
	assert.NotContains(t, store.summaries, articles[0].ID)
}

func TestSummarizeTopRejectsBlankResponses(t *testing.T) {
	judge := &fakeJudge{response: "   \n "}
	store := newFakeSummaryStore()
	s := New(judge, store, testConfig(10))

	written := s.SummarizeTop(context.Background(), []models.Article{scored("a", 0.9)})
	assert.Equal(t, 0, written)
	assert.Empty(t, store.summaries)
}

func TestSummarizeTopEmptyInput(t *testing.T) {
	judge := &fakeJudge{}
	s := New(judge, newFakeSummaryStore(), testConfig(10))
	assert.Zero(t, s.SummarizeTop(context.Background(), nil))
	assert.Empty(t, judge.prompts)
}

func TestSelectTopIsStableForEqualScores(t *testing.T) {
	s := New(nil, nil, testConfig(2))
	articles := make([]models.Article, 4)
	for i := range articles {
		articles[i] = scored(fmt.Sprintf("equal %d", i), 0.5)
	}
	selected := s.selectTop(articles)
	require.Len(t, selected, 2)
	assert.Equal(t, articles[0].ID, selected[0].ID)
	assert.Equal(t, articles[1].ID, selected[1].ID)
}
