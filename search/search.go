package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/llm"
	"tech-radar/logger"
	"tech-radar/models"
)

// ErrNotAvailable is returned when no embedding credential is configured.
// Search degrades to this explicit condition rather than silently
// returning nothing.
var ErrNotAvailable = errors.New("semantic search not available: no embedding capability configured")

// Neighbor pairs a stored vector's article id with its cosine distance
// to the query.
type Neighbor struct {
	ArticleID primitive.ObjectID
	Distance  float64
}

// NearestNeighbors ranks the stored vectors by ascending cosine distance
// to the query and returns up to limit of them. Zero-magnitude vectors
// are skipped; ordering is independent of storage insertion order.
func NearestNeighbors(query []float32, entries []models.VectorEntry, limit int) []Neighbor {
	neighbors := make([]Neighbor, 0, len(entries))
	for _, e := range entries {
		d, ok := cosineDistance(query, e.Embedding)
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{ArticleID: e.ArticleID, Distance: d})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors
}

// cosineDistance returns 1 - cosine similarity. The second return is
// false for dimension mismatches and zero-magnitude vectors.
func cosineDistance(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), true
}

// VectorReader loads the stored vector corpus. Satisfied by
// repositories.VectorRepository.
type VectorReader interface {
	All(ctx context.Context) ([]models.VectorEntry, error)
}

// ArticleReader hydrates article records by id. Satisfied by
// repositories.ArticleRepository.
type ArticleReader interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Article, error)
}

// Result is one semantic search hit.
type Result struct {
	Article  models.Article `json:"article"`
	Distance float64        `json:"distance"`
}

// Service answers semantic queries: embed the query text in query mode,
// rank stored document vectors by distance, hydrate the articles in rank
// order.
type Service struct {
	embedder llm.Embedder
	vectors  VectorReader
	articles ArticleReader
}

// NewService accepts a nil embedder, in which case every query returns
// ErrNotAvailable.
func NewService(embedder llm.Embedder, vectors VectorReader, articles ArticleReader) *Service {
	return &Service{embedder: embedder, vectors: vectors, articles: articles}
}

func (s *Service) Available() bool { return s.embedder != nil }

// Query runs a semantic search and returns up to limit articles in
// ascending distance order.
func (s *Service) Query(ctx context.Context, text string, limit int) ([]Result, error) {
	if s.embedder == nil {
		return nil, ErrNotAvailable
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	entries, err := s.vectors.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	neighbors := NearestNeighbors(queryVec, entries, limit)
	if len(neighbors) == 0 {
		return []Result{}, nil
	}

	ids := make([]primitive.ObjectID, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ArticleID
	}
	articles, err := s.articles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate articles: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	// hydration must not disturb the distance ordering; vectors whose
	// article was purged since the last orphan sweep are dropped here
	results := make([]Result, 0, len(neighbors))
	for _, n := range neighbors {
		a, ok := byID[n.ArticleID]
		if !ok {
			logger.Log.Debugf("search: skipping orphan vector %s", n.ArticleID.Hex())
			continue
		}
		results = append(results, Result{Article: a, Distance: n.Distance})
	}
	return results, nil
}
