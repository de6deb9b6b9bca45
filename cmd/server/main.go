package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tech-radar/api/router"
	"tech-radar/config"
	"tech-radar/db"
	"tech-radar/digest"
	"tech-radar/embedder"
	"tech-radar/llm"
	"tech-radar/logger"
	"tech-radar/orchestrator"
	"tech-radar/pipeline"
	"tech-radar/repositories"
	"tech-radar/scheduler"
	"tech-radar/scorer"
	"tech-radar/scraper"
	"tech-radar/search"
	"tech-radar/summarizer"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	ctx := context.Background()
	store, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("failed to connect to MongoDB: ", err)
	}
	defer store.Close(ctx)

	articleRepo := repositories.NewArticleRepository(store.Database())
	runRepo := repositories.NewSourceRunRepository(store.Database())
	keywordRepo := repositories.NewKeywordRepository(store.Database())
	customRepo := repositories.NewCustomSourceRepository(store.Database())
	vectorRepo := repositories.NewVectorRepository(store.Database())

	if err := keywordRepo.SeedDefaults(ctx); err != nil {
		logger.Log.Warnf("failed to seed default keywords: %v", err)
	}

	gemini, err := llm.NewGeminiClient(ctx, &cfg)
	if err != nil {
		log.Fatal("failed to create LLM client: ", err)
	}

	registry := scraper.NewRegistry(cfg)
	orch := orchestrator.New(registry, runRepo, articleRepo, customRepo)

	var emb pipeline.Embedder
	var queryEmbedder llm.Embedder
	if store.SupportsVectorSearch {
		emb = embedder.New(gemini, articleRepo, vectorRepo, &cfg)
		queryEmbedder = gemini
	}

	pipe := pipeline.New(
		orch,
		articleRepo,
		vectorRepo,
		scorer.New(gemini, articleRepo, keywordRepo, &cfg),
		summarizer.New(gemini, articleRepo, &cfg),
		emb,
		&cfg,
	)

	digestSelector := digest.NewSelector(articleRepo, cfg.Scoring.KeepThreshold)

	sched := scheduler.New(&cfg,
		func(ctx context.Context) {
			pipe.RunDaily(ctx)
		},
		func(ctx context.Context) {
			d, err := digestSelector.Select(ctx, time.Now().AddDate(0, 0, -7), 0)
			if err != nil {
				logger.Log.Errorf("weekly digest selection failed: %v", err)
				return
			}
			if d.Total == 0 {
				logger.Log.Info("weekly digest: nothing to include")
				return
			}
			if err := digestSelector.MarkDelivered(ctx, d); err != nil {
				logger.Log.Errorf("weekly digest mark failed: %v", err)
				return
			}
			logger.Log.Infof("weekly digest prepared: %d articles in %d groups", d.Total, len(d.GroupOrder))
		},
	)
	sched.Start(ctx)

	r := router.New(router.Deps{
		Config:        &cfg,
		Store:         store,
		Articles:      articleRepo,
		SourceRuns:    runRepo,
		Keywords:      keywordRepo,
		CustomSources: customRepo,
		Orchestrator:  orch,
		Pipeline:      pipe,
		Search:        search.NewService(queryEmbedder, vectorRepo, articleRepo),
		Digest:        digestSelector,
		Scheduler:     sched,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Log.Infof("tech-radar listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("server exited: ", err)
	}
}
