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

type CustomSourceRepository struct {
	col *mongo.Collection
}

func NewCustomSourceRepository(db *mongo.Database) *CustomSourceRepository {
	return &CustomSourceRepository{col: db.Collection("custom_sources")}
}

// ListActive returns user-registered feed sources in creation order.
func (r *CustomSourceRepository) ListActive(ctx context.Context) ([]models.CustomSource, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.CustomSource
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add registers a new custom feed. The unique index on name rejects
// duplicates; built-in name collisions are checked by the caller, which
// knows the adapter registry.
func (r *CustomSourceRepository) Add(ctx context.Context, name, feedURL string) (primitive.ObjectID, error) {
	src := models.CustomSource{
		Name:      name,
		FeedURL:   feedURL,
		Active:    true,
		CreatedAt: time.Now(),
	}
	res, err := r.col.InsertOne(ctx, src)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (r *CustomSourceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindByName returns the active custom source with the given name, or
// mongo.ErrNoDocuments.
func (r *CustomSourceRepository) FindByName(ctx context.Context, name string) (*models.CustomSource, error) {
	var s models.CustomSource
	if err := r.col.FindOne(ctx, bson.M{"name": name, "active": true}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
