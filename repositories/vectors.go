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

type VectorRepository struct {
	col *mongo.Collection
}

func NewVectorRepository(db *mongo.Database) *VectorRepository {
	return &VectorRepository{col: db.Collection("article_vectors")}
}

// Upsert writes the embedding for an article, replacing any prior vector.
// Re-embedding an article overwrites rather than duplicates.
func (r *VectorRepository) Upsert(ctx context.Context, articleID primitive.ObjectID, embedding []float32, model string) error {
	filter := bson.M{"article_id": articleID}
	update := bson.M{
		"$set": bson.M{
			"article_id": articleID,
			"embedding":  embedding,
			"model":      model,
			"created_at": time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *VectorRepository) Delete(ctx context.Context, articleID primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"article_id": articleID})
	return err
}

// All streams every stored vector. The corpus is bounded by retention so
// loading it for an in-process nearest-neighbour pass is acceptable.
func (r *VectorRepository) All(ctx context.Context) ([]models.VectorEntry, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []models.VectorEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VectorRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// SweepOrphans deletes vectors whose article no longer exists. Article
// deletion and vector cleanup are loosely coupled: transient orphans
// between a purge and the next sweep are tolerated.
func (r *VectorRepository) SweepOrphans(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "articles"},
			{Key: "localField", Value: "article_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "article"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "article", Value: bson.D{{Key: "$size", Value: 0}}}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var orphans []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &orphans); err != nil {
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(orphans))
	for _, o := range orphans {
		ids = append(ids, o.ID)
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
