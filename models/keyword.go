package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// WatchKeyword weights a topic in the relevance-judging prompt. Keywords are
// config data edited at runtime through the admin API; the scorer reads the
// active set on every cycle.
// Collection: watch_keywords
type WatchKeyword struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Keyword  string             `bson:"keyword" json:"keyword"`
	Category string             `bson:"category" json:"category"`
	Priority int                `bson:"priority" json:"priority"`
	Active   bool               `bson:"active" json:"active"`
}

// Categories the judge may assign. Order is not significant here; an
// article's own category list is ordered by the judge's preference.
var ValidCategories = []string{"ai", "stack", "devops", "trend"}
