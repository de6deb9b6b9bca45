package handlers

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/logger"
	"tech-radar/models"
	"tech-radar/orchestrator"
	"tech-radar/pipeline"
	"tech-radar/repositories"
)

// sourceNamePattern keeps custom source names URL- and log-safe.
var sourceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

// TriggerScanHandler kicks off a full pipeline cycle in the background and
// returns immediately. A scan already in flight is not a conflict; upserts
// are idempotent, so concurrent cycles are wasteful but safe.
func TriggerScanHandler(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		go func() {
			stats := p.RunDaily(context.Background())
			logger.Log.Infof("admin-triggered cycle done: %d new, %d relevant", stats.Scan.TotalNew, stats.Relevant)
		}()
		c.JSON(http.StatusAccepted, gin.H{"status": "scan started"})
	}
}

// TriggerSourceHandler rescans one named source out of band, synchronously,
// so the caller sees the result.
func TriggerSourceHandler(o *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		result, err := o.RunSource(c.Request.Context(), name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type addCustomSourceRequest struct {
	Name    string `json:"name" binding:"required"`
	FeedURL string `json:"feed_url" binding:"required,url"`
}

// AddCustomSourceHandler registers a user-supplied RSS feed. Names
// colliding with a built-in adapter are rejected so a custom feed can
// never shadow one.
func AddCustomSourceHandler(repo *repositories.CustomSourceRepository, o *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addCustomSourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !sourceNamePattern.MatchString(req.Name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 3-50 chars of lowercase letters, digits and hyphens"})
			return
		}
		if o.IsBuiltinSource(req.Name) {
			c.JSON(http.StatusConflict, gin.H{"error": "name collides with a built-in source"})
			return
		}

		id, err := repo.Add(c.Request.Context(), req.Name, req.FeedURL)
		if err != nil {
			if isDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "source already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id.Hex(), "name": req.Name})
	}
}

func DeleteCustomSourceHandler(repo *repositories.CustomSourceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type addKeywordRequest struct {
	Keyword  string `json:"keyword" binding:"required"`
	Category string `json:"category" binding:"required"`
	Priority int    `json:"priority"`
}

func AddKeywordHandler(repo *repositories.KeywordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addKeywordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !validCategory(req.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category must be one of: ai, stack, devops, trend"})
			return
		}
		if req.Priority < 1 || req.Priority > 10 {
			req.Priority = 5
		}

		id, err := repo.Add(c.Request.Context(), req.Keyword, req.Category, req.Priority)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
	}
}

func DeleteKeywordHandler(repo *repositories.KeywordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type starRequest struct {
	Starred bool `json:"starred"`
}

// StarArticleHandler pins or unpins an article; starred articles survive
// the retention purge.
func StarArticleHandler(repo *repositories.ArticleRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
			return
		}
		var req starRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := repo.SetStarred(c.Request.Context(), id, req.Starred); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"starred": req.Starred})
	}
}

func validCategory(c string) bool {
	for _, v := range models.ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}
