package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VectorEntry pairs an embedded article with its fixed-dimension embedding,
// 1:1 by article id with overwrite semantics on re-embedding.
// Collection: article_vectors
type VectorEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ArticleID primitive.ObjectID `bson:"article_id" json:"article_id"`
	Embedding []float32          `bson:"embedding" json:"-"`
	Model     string             `bson:"model" json:"model"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
