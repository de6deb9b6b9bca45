package embedder

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/config"
	"tech-radar/llm"
	"tech-radar/logger"
	"tech-radar/models"
)

// maxEmbedTextLen bounds the text sent per article to the embedding
// provider.
const maxEmbedTextLen = 1000

// ArticleStore is the slice of the article repository the embedder needs.
type ArticleStore interface {
	FindForEmbedding(ctx context.Context, minScore float64, limit int) ([]models.Article, error)
	SetEmbedded(ctx context.Context, id primitive.ObjectID, embedded bool) error
}

// VectorStore persists one vector per article id with overwrite
// semantics. Satisfied by repositories.VectorRepository.
type VectorStore interface {
	Upsert(ctx context.Context, articleID primitive.ObjectID, embedding []float32, model string) error
	Delete(ctx context.Context, articleID primitive.ObjectID) error
}

// Embedder computes vectors for relevant, not-yet-embedded articles.
// Failed batches stay unembedded and are naturally retried next cycle;
// unlike the scorer there is no forced terminal state here.
type Embedder struct {
	provider  llm.Embedder
	articles  ArticleStore
	vectors   VectorStore
	minScore  float64
	batchSize int
	maxPerRun int
}

func New(provider llm.Embedder, articles ArticleStore, vectors VectorStore, cfg *config.AppConfig) *Embedder {
	return &Embedder{
		provider:  provider,
		articles:  articles,
		vectors:   vectors,
		minScore:  cfg.Scoring.KeepThreshold,
		batchSize: cfg.Embedding.BatchSize,
		maxPerRun: cfg.Embedding.MaxPerRun,
	}
}

// EmbedPending embeds the current backlog, capped per run to bound cost.
// Whatever doesn't fit is picked up next cycle. Returns the number of
// articles embedded.
func (e *Embedder) EmbedPending(ctx context.Context) (int, error) {
	pending, err := e.articles.FindForEmbedding(ctx, e.minScore, e.maxPerRun)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	logger.Log.Infof("embedding %d pending articles", len(pending))

	embedded := 0
	for start := 0; start < len(pending); start += e.batchSize {
		end := start + e.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, a := range batch {
			texts[i] = a.EmbeddingText(maxEmbedTextLen)
		}
		vectors, err := e.provider.EmbedDocuments(ctx, texts)
		if err != nil {
			// the whole batch stays unembedded and retries next cycle
			logger.Log.Errorf("embedding batch failed, %d articles left for next cycle: %v", len(batch), err)
			continue
		}

		for i, a := range batch {
			if err := e.store(ctx, a.ID, vectors[i]); err != nil {
				logger.Log.Errorf("failed to store vector for %s: %v", a.ID.Hex(), err)
				continue
			}
			embedded++
		}
	}
	return embedded, nil
}

// store writes the vector and flips the embedded flag as a unit. If the
// flag write fails the vector is rolled back, so an article is never left
// flagged without a vector or vectored without a flag.
func (e *Embedder) store(ctx context.Context, articleID primitive.ObjectID, vector []float32) error {
	if err := e.vectors.Upsert(ctx, articleID, vector, e.provider.Model()); err != nil {
		return err
	}
	if err := e.articles.SetEmbedded(ctx, articleID, true); err != nil {
		if derr := e.vectors.Delete(ctx, articleID); derr != nil {
			logger.Log.Errorf("failed to roll back vector for %s: %v", articleID.Hex(), derr)
		}
		return err
	}
	return nil
}
