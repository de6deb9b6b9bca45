package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source run statuses. A run transitions exactly once from running to a
// terminal status; a run left running past a process crash is surfaced as
// stale in the UI, not auto-healed.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// SourceRun is one execution record of one source adapter.
// Collection: source_runs
type SourceRun struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Source       string             `bson:"source" json:"source"`
	StartedAt    time.Time          `bson:"started_at" json:"started_at"`
	CompletedAt  *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Status       string             `bson:"status" json:"status"`
	ItemsFound   int                `bson:"items_found" json:"items_found"`
	ItemsNew     int                `bson:"items_new" json:"items_new"`
	ErrorMessage string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
}
