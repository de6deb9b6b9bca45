package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/models"
)

func entry(id primitive.ObjectID, v []float32) models.VectorEntry {
	return models.VectorEntry{ArticleID: id, Embedding: v}
}

func TestNearestNeighborsOrdersByDistanceNotInsertion(t *testing.T) {
	near := primitive.NewObjectID()
	mid := primitive.NewObjectID()
	far := primitive.NewObjectID()

	query := []float32{1, 0}
	// stored deliberately out of distance order
	entries := []models.VectorEntry{
		entry(far, []float32{-1, 0.2}),
		entry(near, []float32{1, 0.01}),
		entry(mid, []float32{0.5, 0.5}),
	}

	neighbors := NearestNeighbors(query, entries, 10)
	require.Len(t, neighbors, 3)
	assert.Equal(t, near, neighbors[0].ArticleID)
	assert.Equal(t, mid, neighbors[1].ArticleID)
	assert.Equal(t, far, neighbors[2].ArticleID)
	assert.Less(t, neighbors[0].Distance, neighbors[1].Distance)
	assert.Less(t, neighbors[1].Distance, neighbors[2].Distance)
}

func TestNearestNeighborsAppliesLimit(t *testing.T) {
	query := []float32{1, 0}
	entries := []models.VectorEntry{
		entry(primitive.NewObjectID(), []float32{1, 0}),
		entry(primitive.NewObjectID(), []float32{0, 1}),
		entry(primitive.NewObjectID(), []float32{-1, 0}),
	}
	neighbors := NearestNeighbors(query, entries, 2)
	assert.Len(t, neighbors, 2)
}

func TestNearestNeighborsSkipsDegenerateVectors(t *testing.T) {
	query := []float32{1, 0}
	entries := []models.VectorEntry{
		entry(primitive.NewObjectID(), []float32{0, 0}),       // zero magnitude
		entry(primitive.NewObjectID(), []float32{1, 0, 0, 0}), // wrong dimension
		entry(primitive.NewObjectID(), []float32{1, 0}),
	}
	neighbors := NearestNeighbors(query, entries, 10)
	assert.Len(t, neighbors, 1)
}

func TestCosineDistanceIdenticalVectors(t *testing.T) {
	d, ok := cosineDistance([]float32{0.3, 0.4}, []float32{0.3, 0.4})
	require.True(t, ok)
	assert.InDelta(t, 0, d, 1e-9)
}

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vec, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embed-001" }

type fakeVectorReader struct {
	entries []models.VectorEntry
}

func (f *fakeVectorReader) All(ctx context.Context) ([]models.VectorEntry, error) {
	return f.entries, nil
}

type fakeArticleReader struct {
	articles map[primitive.ObjectID]models.Article
}

func (f *fakeArticleReader) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Article, error) {
	// deliberately returns in arbitrary (map) order: the service must
	// restore distance order itself
	var out []models.Article
	for _, id := range ids {
		if a, ok := f.articles[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestQueryUnavailableWithoutEmbedder(t *testing.T) {
	svc := NewService(nil, &fakeVectorReader{}, &fakeArticleReader{})
	assert.False(t, svc.Available())

	_, err := svc.Query(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestQueryHydratesInDistanceOrder(t *testing.T) {
	near := primitive.NewObjectID()
	far := primitive.NewObjectID()

	vectors := &fakeVectorReader{entries: []models.VectorEntry{
		entry(far, []float32{0, 1}),
		entry(near, []float32{1, 0}),
	}}
	articles := &fakeArticleReader{articles: map[primitive.ObjectID]models.Article{
		near: {ID: near, Title: "near"},
		far:  {ID: far, Title: "far"},
	}}
	svc := NewService(&fakeEmbedder{vec: []float32{1, 0}}, vectors, articles)

	results, err := svc.Query(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Article.Title)
	assert.Equal(t, "far", results[1].Article.Title)
}

func TestQueryDropsVectorsWithoutArticles(t *testing.T) {
	alive := primitive.NewObjectID()
	orphan := primitive.NewObjectID()

	vectors := &fakeVectorReader{entries: []models.VectorEntry{
		entry(orphan, []float32{1, 0}),
		entry(alive, []float32{0.9, 0.1}),
	}}
	articles := &fakeArticleReader{articles: map[primitive.ObjectID]models.Article{
		alive: {ID: alive, Title: "alive"},
	}}
	svc := NewService(&fakeEmbedder{vec: []float32{1, 0}}, vectors, articles)

	results, err := svc.Query(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alive", results[0].Article.Title)
}

func TestQueryEmptyCorpus(t *testing.T) {
	svc := NewService(&fakeEmbedder{vec: []float32{1, 0}}, &fakeVectorReader{}, &fakeArticleReader{})
	results, err := svc.Query(context.Background(), "query", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
