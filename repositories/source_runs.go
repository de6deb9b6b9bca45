package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tech-radar/models"
)

type SourceRunRepository struct {
	col *mongo.Collection
}

func NewSourceRunRepository(db *mongo.Database) *SourceRunRepository {
	return &SourceRunRepository{col: db.Collection("source_runs")}
}

// StartRun records the beginning of one adapter invocation and returns the
// run id used to close it out. Every invocation must end in exactly one
// CompleteRun or FailRun.
func (r *SourceRunRepository) StartRun(ctx context.Context, source string) (primitive.ObjectID, error) {
	run := models.SourceRun{
		Source:    source,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	res, err := r.col.InsertOne(ctx, run)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (r *SourceRunRepository) CompleteRun(ctx context.Context, id primitive.ObjectID, itemsFound, itemsNew int) error {
	now := time.Now()
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":       models.RunStatusSuccess,
			"completed_at": now,
			"items_found":  itemsFound,
			"items_new":    itemsNew,
		},
	})
	return err
}

func (r *SourceRunRepository) FailRun(ctx context.Context, id primitive.ObjectID, message string) error {
	now := time.Now()
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":        models.RunStatusFailed,
			"completed_at":  now,
			"error_message": message,
		},
	})
	return err
}

// LatestPerSource returns one row per distinct source reflecting its most
// recent run, ordered by source name.
func (r *SourceRunRepository) LatestPerSource(ctx context.Context) ([]models.SourceRun, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "started_at", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$source"},
			{Key: "latest", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$latest"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "source", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []models.SourceRun
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
