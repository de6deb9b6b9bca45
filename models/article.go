package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article is one deduplicated news/content item.
// Collection: articles. source_url carries a unique index — it is the sole
// hard dedup key; title-similarity dedup is heuristic and happens pre-scoring.
type Article struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Source         string             `bson:"source" json:"source"`
	SourceURL      string             `bson:"source_url" json:"source_url"`
	Title          string             `bson:"title" json:"title"`
	Summary        string             `bson:"summary,omitempty" json:"summary,omitempty"`
	ContentSnippet string             `bson:"content_snippet,omitempty" json:"content_snippet,omitempty"`
	RelevanceScore *float64           `bson:"relevance_score,omitempty" json:"relevance_score,omitempty"`
	Categories     []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Author         string             `bson:"author,omitempty" json:"author,omitempty"`
	PublishedAt    *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ScrapedAt      time.Time          `bson:"scraped_at" json:"scraped_at"`
	DigestIncluded bool               `bson:"digest_included" json:"digest_included"`
	Starred        bool               `bson:"starred" json:"starred"`
	StarredAt      *time.Time         `bson:"starred_at,omitempty" json:"starred_at,omitempty"`
	Embedded       bool               `bson:"embedded" json:"embedded"`
	ImageURL       string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// Scored reports whether the relevance judge has already seen this article.
func (a Article) Scored() bool {
	return a.RelevanceScore != nil
}

// EmbeddingText is the text sent to the embedding provider: title plus the
// best available body, preferring the LLM summary over the raw snippet.
func (a Article) EmbeddingText(maxLen int) string {
	body := a.Summary
	if body == "" {
		body = a.ContentSnippet
	}
	text := a.Title + ". " + body
	rs := []rune(text)
	if len(rs) > maxLen {
		return string(rs[:maxLen])
	}
	return text
}
