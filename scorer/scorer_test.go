package scorer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/config"
	"tech-radar/models"
)

type fakeJudge struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeJudge) Generate(ctx context.Context, system, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "[]", nil
}

type persistedScore struct {
	score      float64
	categories []string
	tags       []string
}

type fakeScoreStore struct {
	scores map[primitive.ObjectID]persistedScore
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{scores: make(map[primitive.ObjectID]persistedScore)}
}

func (f *fakeScoreStore) UpdateScore(ctx context.Context, id primitive.ObjectID, score float64, categories, tags []string) error {
	f.scores[id] = persistedScore{score: score, categories: categories, tags: tags}
	return nil
}

type fakeKeywords struct {
	kws []models.WatchKeyword
	err error
}

func (f *fakeKeywords) ListActive(ctx context.Context) ([]models.WatchKeyword, error) {
	return f.kws, f.err
}

func testConfig(batchSize int) *config.AppConfig {
	return &config.AppConfig{
		Scoring: config.ScoringConfig{BatchSize: batchSize, KeepThreshold: 0.4},
	}
}

func makeArticles(n int) []models.Article {
	out := make([]models.Article, n)
	for i := range out {
		out[i] = models.Article{
			ID:     primitive.NewObjectID(),
			Title:  fmt.Sprintf("article %d", i),
			Source: "test",
		}
	}
	return out
}

func TestScoreClamping(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		`[{"index":0,"score":1.7,"categories":["ai"],"tags":[]},{"index":1,"score":-0.3,"categories":[],"tags":[]}]`,
	}}
	store := newFakeScoreStore()
	s := New(judge, store, &fakeKeywords{}, testConfig(25))

	articles := makeArticles(2)
	_, err := s.ScoreArticles(context.Background(), articles)
	require.NoError(t, err)

	assert.Equal(t, 1.0, store.scores[articles[0].ID].score)
	assert.Equal(t, 0.0, store.scores[articles[1].ID].score)
}

func TestBatchFailureIsolation(t *testing.T) {
	// batch size 2, 6 articles = 3 batches; batch 2 fails
	judge := &fakeJudge{
		responses: []string{
			`[{"index":0,"score":0.9},{"index":1,"score":0.8}]`,
			"",
			`[{"index":0,"score":0.7},{"index":1,"score":0.6}]`,
		},
		errs: []error{nil, errors.New("model overloaded"), nil},
	}
	store := newFakeScoreStore()
	s := New(judge, store, &fakeKeywords{}, testConfig(2))

	articles := makeArticles(6)
	relevant, err := s.ScoreArticles(context.Background(), articles)
	require.NoError(t, err)

	// every article persisted, failed batch at exactly zero
	require.Len(t, store.scores, 6)
	assert.Equal(t, 0.9, store.scores[articles[0].ID].score)
	assert.Equal(t, 0.0, store.scores[articles[2].ID].score)
	assert.Equal(t, 0.0, store.scores[articles[3].ID].score)
	assert.Empty(t, store.scores[articles[2].ID].categories)
	assert.Empty(t, store.scores[articles[2].ID].tags)
	assert.Equal(t, 0.7, store.scores[articles[4].ID].score)

	// the failed batch contributes nothing relevant
	assert.Len(t, relevant, 4)
}

func TestKeepThresholdFiltering(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		`[{"index":0,"score":0.1},{"index":1,"score":0.39},{"index":2,"score":0.4},{"index":3,"score":0.85}]`,
	}}
	store := newFakeScoreStore()
	s := New(judge, store, &fakeKeywords{}, testConfig(25))

	articles := makeArticles(4)
	relevant, err := s.ScoreArticles(context.Background(), articles)
	require.NoError(t, err)

	// all four persisted with their raw score
	require.Len(t, store.scores, 4)
	assert.Equal(t, 0.39, store.scores[articles[1].ID].score)

	// only 0.4 and 0.85 returned
	require.Len(t, relevant, 2)
	assert.Equal(t, articles[2].ID, relevant[0].ID)
	assert.Equal(t, articles[3].ID, relevant[1].ID)
}

func TestMalformedEntryDiscardedOthersSurvive(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		`[{"index":0,"score":0.9},{"index":"one","score":"high"},{"index":2,"score":0.5}]`,
	}}
	store := newFakeScoreStore()
	s := New(judge, store, &fakeKeywords{}, testConfig(25))

	articles := makeArticles(3)
	_, err := s.ScoreArticles(context.Background(), articles)
	require.NoError(t, err)

	assert.Equal(t, 0.9, store.scores[articles[0].ID].score)
	assert.Equal(t, 0.0, store.scores[articles[1].ID].score)
	assert.Equal(t, 0.5, store.scores[articles[2].ID].score)
}

func TestInvalidCategoriesDroppedAndCapped(t *testing.T) {
	judge := &fakeJudge{responses: []string{
		`[{"index":0,"score":0.9,"categories":["AI","nonsense","stack","devops"],"tags":["a","b","c","d","e","f"]}]`,
	}}
	store := newFakeScoreStore()
	s := New(judge, store, &fakeKeywords{}, testConfig(25))

	articles := makeArticles(1)
	_, err := s.ScoreArticles(context.Background(), articles)
	require.NoError(t, err)

	got := store.scores[articles[0].ID]
	assert.Equal(t, []string{"ai", "stack"}, got.categories)
	assert.Len(t, got.tags, 5)
}

func TestKeywordsAppearInPrompt(t *testing.T) {
	judge := &fakeJudge{responses: []string{`[{"index":0,"score":0.5}]`}}
	store := newFakeScoreStore()
	kws := &fakeKeywords{kws: []models.WatchKeyword{
		{Keyword: "MCP server", Category: "ai", Priority: 9},
		{Keyword: "Fly.io", Category: "stack", Priority: 8},
	}}
	s := New(judge, store, kws, testConfig(25))

	_, err := s.ScoreArticles(context.Background(), makeArticles(1))
	require.NoError(t, err)

	require.Len(t, judge.prompts, 1)
	assert.Contains(t, judge.prompts[0], "MCP server")
	assert.Contains(t, judge.prompts[0], "Fly.io")
}

func TestEmptyKeywordSetStillScores(t *testing.T) {
	judge := &fakeJudge{responses: []string{`[{"index":0,"score":0.5}]`}}
	store := newFakeScoreStore()
	s := New(judge, store, &fakeKeywords{}, testConfig(25))

	relevant, err := s.ScoreArticles(context.Background(), makeArticles(1))
	require.NoError(t, err)
	assert.Len(t, relevant, 1)
	assert.NotContains(t, judge.prompts[0], "Topics currently on the radar")
}

func TestScoreArticlesEmptyInput(t *testing.T) {
	judge := &fakeJudge{}
	s := New(judge, newFakeScoreStore(), &fakeKeywords{}, testConfig(25))

	relevant, err := s.ScoreArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, relevant)
	assert.Zero(t, judge.calls)
}
