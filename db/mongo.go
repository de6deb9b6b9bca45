package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tech-radar/config"
	"tech-radar/logger"
)

// Store is the process-wide storage handle. It is constructed once at
// startup and passed explicitly into repositories and pipeline components;
// there is no lazily-initialized global connection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	// SupportsVectorSearch gates the embed stage and semantic search.
	// When false those features answer "unavailable" instead of silently
	// returning empty results.
	SupportsVectorSearch bool
}

// Connect opens the Mongo connection, verifies it with a ping and ensures
// indexes. A failed ping or index build is fatal to the caller: proceeding
// on a store we cannot verify risks silent data loss.
func Connect(ctx context.Context, cfg config.AppConfig) (*Store, error) {
	cl, err := mongo.NewClient(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cl.Connect(ctx); err != nil {
		return nil, err
	}
	if err := cl.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	database := cl.Database(cfg.Mongo.DBName)
	if err := ensureIndexes(ctx, database); err != nil {
		return nil, err
	}

	s := &Store{
		client:               cl,
		db:                   database,
		SupportsVectorSearch: cfg.SupportsVectorSearch(),
	}
	logger.Log.Info("MongoDB connected and indexes ensured")
	if !s.SupportsVectorSearch {
		logger.Log.Warn("vector search disabled (no embedding credential configured)")
	}
	return s, nil
}

func (s *Store) Database() *mongo.Database { return s.db }

// Ping verifies the connection is still healthy (used by /health).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// articles: unique index on source_url — the hard dedup guarantee
	{
		mi := mongo.IndexModel{
			Keys:    bson.D{{Key: "source_url", Value: 1}},
			Options: options.Index().SetName("uniq_source_url").SetUnique(true),
		}
		if _, err := d.Collection("articles").Indexes().CreateOne(ctx, mi); err != nil {
			return err
		}
	}

	// articles: indexes on source, relevance_score, scraped_at (desc), categories
	{
		if _, err := d.Collection("articles").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "source", Value: 1}},
			Options: options.Index().SetName("idx_source"),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("articles").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "relevance_score", Value: -1}},
			Options: options.Index().SetName("idx_relevance_desc"),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("articles").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "scraped_at", Value: -1}},
			Options: options.Index().SetName("idx_scraped_desc"),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("articles").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "categories", Value: 1}},
			Options: options.Index().SetName("idx_categories"),
		}); err != nil {
			return err
		}
	}

	// source_runs: indexes on source and started_at (desc)
	{
		if _, err := d.Collection("source_runs").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "source", Value: 1}},
			Options: options.Index().SetName("idx_run_source"),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("source_runs").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "started_at", Value: -1}},
			Options: options.Index().SetName("idx_run_started_desc"),
		}); err != nil {
			return err
		}
	}

	// custom_sources: unique name
	{
		if _, err := d.Collection("custom_sources").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("uniq_custom_name").SetUnique(true),
		}); err != nil {
			return err
		}
	}

	// article_vectors: unique article_id (overwrite semantics on re-embed)
	{
		if _, err := d.Collection("article_vectors").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "article_id", Value: 1}},
			Options: options.Index().SetName("uniq_vector_article").SetUnique(true),
		}); err != nil {
			return err
		}
	}
	return nil
}
