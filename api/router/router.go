package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tech-radar/api/handlers"
	"tech-radar/api/middleware"
	"tech-radar/config"
	"tech-radar/db"
	"tech-radar/digest"
	"tech-radar/orchestrator"
	"tech-radar/pipeline"
	"tech-radar/repositories"
	"tech-radar/scheduler"
	"tech-radar/search"
)

// Deps carries everything the HTTP surface needs. Constructed once in
// main and passed in; handlers never reach for globals.
type Deps struct {
	Config        *config.AppConfig
	Store         *db.Store
	Articles      *repositories.ArticleRepository
	SourceRuns    *repositories.SourceRunRepository
	Keywords      *repositories.KeywordRepository
	CustomSources *repositories.CustomSourceRepository
	Orchestrator  *orchestrator.Orchestrator
	Pipeline      *pipeline.Pipeline
	Search        *search.Service
	Digest        *digest.Selector
	Scheduler     *scheduler.Scheduler
}

func New(d Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		total, _ := d.Articles.Count(c.Request.Context())
		scored, _ := d.Articles.CountScored(c.Request.Context())
		body := gin.H{
			"status":          "ok",
			"articles":        total,
			"scored":          scored,
			"semantic_search": d.Search.Available(),
		}
		if d.Scheduler != nil {
			body["schedule"] = d.Scheduler.Status()
		}
		c.JSON(http.StatusOK, body)
	})

	api := r.Group("/api/v1")
	{
		api.GET("/articles", handlers.ListArticlesHandler(d.Articles))
		api.GET("/articles/:id", handlers.GetArticleHandler(d.Articles))
		api.GET("/feed", handlers.FeedHandler(d.Digest))
		api.GET("/search", handlers.SearchHandler(d.Search))
		api.GET("/sources", handlers.SourcesStatusHandler(d.SourceRuns))
		api.GET("/keywords", handlers.ListKeywordsHandler(d.Keywords))
		api.GET("/custom-sources", handlers.ListCustomSourcesHandler(d.CustomSources))
	}

	admin := r.Group("/api/v1/admin", middleware.AdminAuth(d.Config.AdminToken))
	{
		admin.POST("/scan", handlers.TriggerScanHandler(d.Pipeline))
		admin.POST("/scan/:name", handlers.TriggerSourceHandler(d.Orchestrator))
		admin.POST("/custom-sources", handlers.AddCustomSourceHandler(d.CustomSources, d.Orchestrator))
		admin.DELETE("/custom-sources/:id", handlers.DeleteCustomSourceHandler(d.CustomSources))
		admin.POST("/keywords", handlers.AddKeywordHandler(d.Keywords))
		admin.DELETE("/keywords/:id", handlers.DeleteKeywordHandler(d.Keywords))
		admin.POST("/articles/:id/star", handlers.StarArticleHandler(d.Articles))
	}

	return r
}
