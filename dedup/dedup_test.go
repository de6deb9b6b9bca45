package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tech-radar/models"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("OpenAI releases GPT-5, today!")
	assert.Equal(t, map[string]struct{}{
		"openai":   {},
		"releases": {},
		"gpt":      {},
		"today":    {},
	}, tokens)
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("Go vs C: a tale of 2 GCs")
	_, hasGo := tokens["go"]
	assert.False(t, hasGo)
	_, hasTale := tokens["tale"]
	assert.True(t, hasTale)
}

func TestJaccardEmptySetsScoreZero(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(Tokenize("!!"), Tokenize("??")))
	assert.Equal(t, 0.0, Jaccard(Tokenize("real title here"), Tokenize("")))
}

func TestSimilarAboveThreshold(t *testing.T) {
	// token sets: {openai, releases, gpt, today} vs {openai, launches, gpt}
	// overlap 2/5 = 0.4, below threshold
	assert.False(t, Similar("OpenAI releases GPT-5 today", "OpenAI launches GPT-5"))

	// identical token sets
	assert.True(t, Similar("OpenAI releases GPT-5", "openai RELEASES gpt-5!"))

	// {openai, releases, gpt, today} vs {docker, ships, v27}
	assert.False(t, Similar("OpenAI releases GPT-5 today", "Docker ships v27"))
}

func TestFilterKeepsFirstOccurrence(t *testing.T) {
	candidates := []models.Article{
		{Title: "Kubernetes 1.31 released with sidecar support"},
		{Title: "Kubernetes 1.31 released: sidecar support"},
		{Title: "Docker ships v27"},
	}

	kept, dropped := Filter(candidates)
	require.Len(t, kept, 2)
	require.Len(t, dropped, 1)
	assert.Equal(t, candidates[0].Title, kept[0].Title)
	assert.Equal(t, candidates[2].Title, kept[1].Title)
	assert.Equal(t, candidates[1].Title, dropped[0].Title)
}

func TestFilterIsDeterministic(t *testing.T) {
	candidates := []models.Article{
		{Title: "Rust 1.80 stabilizes LazyCell"},
		{Title: "Announcing Rust 1.80: LazyCell stabilized"},
		{Title: "PostgreSQL 17 beta brings incremental backup"},
		{Title: "PostgreSQL 17 beta: incremental backup arrives"},
	}

	first, _ := Filter(candidates)
	for i := 0; i < 10; i++ {
		again, _ := Filter(candidates)
		require.Equal(t, first, again)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	kept, dropped := Filter(nil)
	assert.Empty(t, kept)
	assert.Empty(t, dropped)
}
