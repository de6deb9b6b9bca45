package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tech-radar/models"
)

type KeywordRepository struct {
	col *mongo.Collection
}

func NewKeywordRepository(db *mongo.Database) *KeywordRepository {
	return &KeywordRepository{col: db.Collection("watch_keywords")}
}

// ListActive returns the active watch keywords, highest priority first.
// The scorer reads this set on every cycle to build the judging prompt.
func (r *KeywordRepository) ListActive(ctx context.Context) ([]models.WatchKeyword, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "keyword", Value: 1},
	})
	cur, err := r.col.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.WatchKeyword
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *KeywordRepository) Add(ctx context.Context, keyword, category string, priority int) (primitive.ObjectID, error) {
	kw := models.WatchKeyword{
		Keyword:  keyword,
		Category: category,
		Priority: priority,
		Active:   true,
	}
	res, err := r.col.InsertOne(ctx, kw)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (r *KeywordRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// SeedDefaults inserts the starter keyword set on an empty collection so a
// fresh deployment scores sensibly before anyone curates keywords.
func (r *KeywordRepository) SeedDefaults(ctx context.Context) error {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(defaultKeywords))
	for _, kw := range defaultKeywords {
		kw.Active = true
		docs = append(docs, kw)
	}
	_, err = r.col.InsertMany(ctx, docs)
	return err
}

var defaultKeywords = []models.WatchKeyword{
	{Keyword: "autonomous agent", Category: "ai", Priority: 10},
	{Keyword: "agentic", Category: "ai", Priority: 10},
	{Keyword: "MCP server", Category: "ai", Priority: 9},
	{Keyword: "Model Context Protocol", Category: "ai", Priority: 9},
	{Keyword: "AI orchestration", Category: "ai", Priority: 9},
	{Keyword: "Claude API", Category: "ai", Priority: 8},
	{Keyword: "LLM", Category: "ai", Priority: 7},
	{Keyword: "RAG", Category: "ai", Priority: 7},
	{Keyword: "Next.js", Category: "stack", Priority: 8},
	{Keyword: "React Server Components", Category: "stack", Priority: 8},
	{Keyword: "Supabase", Category: "stack", Priority: 7},
	{Keyword: "PostgreSQL", Category: "stack", Priority: 7},
	{Keyword: "Fly.io", Category: "stack", Priority: 8},
	{Keyword: "Docker", Category: "stack", Priority: 6},
	{Keyword: "Cloudflare Workers", Category: "stack", Priority: 7},
	{Keyword: "Bun runtime", Category: "stack", Priority: 7},
	{Keyword: "Vercel", Category: "stack", Priority: 6},
	{Keyword: "DevOps automation", Category: "devops", Priority: 8},
	{Keyword: "CI/CD", Category: "devops", Priority: 6},
	{Keyword: "container orchestration", Category: "devops", Priority: 7},
	{Keyword: "platform engineering", Category: "devops", Priority: 7},
	{Keyword: "SDLC automation", Category: "devops", Priority: 8},
	{Keyword: "developer tools", Category: "trend", Priority: 6},
	{Keyword: "AI coding", Category: "trend", Priority: 8},
	{Keyword: "vibe coding", Category: "trend", Priority: 7},
	{Keyword: "AI SaaS", Category: "trend", Priority: 7},
}
