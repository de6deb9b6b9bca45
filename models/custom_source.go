package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomSource is a user-registered RSS source scanned alongside the
// built-in feeds. Names must not collide with built-in adapter names.
// Collection: custom_sources
type CustomSource struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	FeedURL   string             `bson:"feed_url" json:"feed_url"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
