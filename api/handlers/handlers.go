package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tech-radar/digest"
	"tech-radar/models"
	"tech-radar/repositories"
	"tech-radar/search"
)

const maxPageSize = 100

// ListArticlesHandler lists scored articles, filterable by category and
// minimum score.
func ListArticlesHandler(repo *repositories.ArticleRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in repositories.ListArticlesOptions
		in.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
		if in.Limit <= 0 || in.Limit > maxPageSize {
			in.Limit = 50
		}
		in.MinScore, _ = strconv.ParseFloat(c.DefaultQuery("min_score", "0"), 64)
		in.Category = c.Query("category")

		items, err := repo.ListByScore(c.Request.Context(), in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if items == nil {
			items = []models.Article{}
		}
		c.JSON(http.StatusOK, items)
	}
}

func GetArticleHandler(repo *repositories.ArticleRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
			return
		}
		article, err := repo.FindByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

// FeedHandler returns the digest-shaped view: top articles since a cutoff,
// grouped by primary category.
func FeedHandler(selector *digest.Selector) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "1"))
		if days <= 0 || days > 30 {
			days = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "40"))
		if limit <= 0 || limit > maxPageSize {
			limit = 40
		}

		d, err := selector.Select(c.Request.Context(), time.Now().AddDate(0, 0, -days), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// SearchHandler answers semantic queries. Responds 503 when no embedding
// capability is configured.
func SearchHandler(svc *search.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit <= 0 || limit > maxPageSize {
			limit = 10
		}

		results, err := svc.Query(c.Request.Context(), query, limit)
		if err != nil {
			if errors.Is(err, search.ErrNotAvailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// SourcesStatusHandler reports the most recent run of every source.
func SourcesStatusHandler(repo *repositories.SourceRunRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		runs, err := repo.LatestPerSource(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if runs == nil {
			runs = []models.SourceRun{}
		}
		c.JSON(http.StatusOK, runs)
	}
}

// ListKeywordsHandler returns the active watch keywords.
func ListKeywordsHandler(repo *repositories.KeywordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		kws, err := repo.ListActive(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if kws == nil {
			kws = []models.WatchKeyword{}
		}
		c.JSON(http.StatusOK, kws)
	}
}

// ListCustomSourcesHandler returns the user-registered feed sources.
func ListCustomSourcesHandler(repo *repositories.CustomSourceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sources, err := repo.ListActive(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if sources == nil {
			sources = []models.CustomSource{}
		}
		c.JSON(http.StatusOK, sources)
	}
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
