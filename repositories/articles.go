package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tech-radar/models"
)

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection("articles")}
}

// InsertIfAbsent inserts an article unless its source_url already exists.
// Returns true when a new document was created. Re-running the same adapter
// output is a no-op, which is what makes ingestion idempotent.
func (r *ArticleRepository) InsertIfAbsent(ctx context.Context, a *models.Article) (bool, error) {
	if a.ScrapedAt.IsZero() {
		a.ScrapedAt = time.Now()
	}

	filter := bson.M{"source_url": a.SourceURL}
	update := bson.M{
		"$setOnInsert": bson.M{
			"source":          a.Source,
			"source_url":      a.SourceURL,
			"title":           a.Title,
			"content_snippet": a.ContentSnippet,
			"author":          a.Author,
			"published_at":    a.PublishedAt,
			"scraped_at":      a.ScrapedAt,
			"digest_included": false,
			"starred":         false,
			"embedded":        false,
			"image_url":       a.ImageURL,
		},
	}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Article, error) {
	var a models.Article
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByIDs returns the articles for the given ids in no particular order.
func (r *ArticleRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindUnscored returns articles the judge has not seen yet, scraped since
// the given time, most recent first.
func (r *ArticleRepository) FindUnscored(ctx context.Context, since time.Time, limit int) ([]models.Article, error) {
	filter := bson.M{
		"relevance_score": nil,
		"scraped_at":      bson.M{"$gte": since},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scraped_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateScore persists the scorer-owned fields only. The summary is left
// untouched so a later summarizer pass is never clobbered.
func (r *ArticleRepository) UpdateScore(ctx context.Context, id primitive.ObjectID, score float64, categories, tags []string) error {
	if categories == nil {
		categories = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"relevance_score": score,
			"categories":      categories,
			"tags":            tags,
		},
	})
	return err
}

// UpdateSummary persists the summary field only, leaving score, categories
// and tags intact.
func (r *ArticleRepository) UpdateSummary(ctx context.Context, id primitive.ObjectID, summary string) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"summary": summary},
	})
	return err
}

// FindForEmbedding selects articles above the keep threshold that have no
// vector yet, most recent first, capped to bound per-cycle embedding cost.
func (r *ArticleRepository) FindForEmbedding(ctx context.Context, minScore float64, limit int) ([]models.Article, error) {
	filter := bson.M{
		"relevance_score": bson.M{"$gte": minScore},
		"embedded":        false,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scraped_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArticleRepository) SetEmbedded(ctx context.Context, id primitive.ObjectID, embedded bool) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"embedded": embedded},
	})
	return err
}

type ListArticlesOptions struct {
	MinScore float64
	Category string
	Limit    int
}

// ListByScore returns scored articles at or above MinScore, best first,
// optionally restricted to one category.
func (r *ArticleRepository) ListByScore(ctx context.Context, in ListArticlesOptions) ([]models.Article, error) {
	filter := bson.M{"relevance_score": bson.M{"$gte": in.MinScore}}
	if in.Category != "" {
		filter["categories"] = in.Category
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "relevance_score", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopSince feeds digest consumers: top-N by score among articles scraped
// since the given time. Articles already delivered in a digest are
// excluded so repeated selections never resend the same story.
func (r *ArticleRepository) TopSince(ctx context.Context, since time.Time, minScore float64, limit int) ([]models.Article, error) {
	filter := bson.M{
		"scraped_at":      bson.M{"$gte": since},
		"relevance_score": bson.M{"$gte": minScore},
		"digest_included": false,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "relevance_score", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArticleRepository) MarkDigestIncluded(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{
		"$set": bson.M{"digest_included": true},
	})
	return err
}

func (r *ArticleRepository) SetStarred(ctx context.Context, id primitive.ObjectID, starred bool) error {
	set := bson.M{"starred": starred}
	if starred {
		set["starred_at"] = time.Now()
	} else {
		set["starred_at"] = nil
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// DeleteStale purges unstarred articles older than the cutoff whose score
// never cleared the retention floor. Vector entries are not removed here;
// orphans are swept separately (transient orphans are tolerated).
func (r *ArticleRepository) DeleteStale(ctx context.Context, olderThan time.Time, minScoreToKeep float64) (int64, error) {
	filter := bson.M{
		"starred":    false,
		"scraped_at": bson.M{"$lt": olderThan},
		"$or": bson.A{
			bson.M{"relevance_score": bson.M{"$lt": minScoreToKeep}},
			bson.M{"relevance_score": nil},
		},
	}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByIDs removes the given articles outright, used to thin
// near-duplicate stories before scoring.
func (r *ArticleRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ArticleRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *ArticleRepository) CountScored(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"relevance_score": bson.M{"$ne": nil}})
}
