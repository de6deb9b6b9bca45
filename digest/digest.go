package digest

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tech-radar/models"
)

// perCategoryCap bounds how many articles one category contributes to a
// digest.
const perCategoryCap = 10

// uncategorized buckets articles whose judge returned no usable category.
const uncategorized = "other"

// ArticleSource is the slice of the article repository the digest
// selection needs.
type ArticleSource interface {
	TopSince(ctx context.Context, since time.Time, minScore float64, limit int) ([]models.Article, error)
	MarkDigestIncluded(ctx context.Context, ids []primitive.ObjectID) error
}

// Group is one category's slice of a digest, ordered by descending score.
type Group struct {
	Category string           `json:"category"`
	Articles []models.Article `json:"articles"`
}

// Digest is the selection a notification consumer renders and sends.
type Digest struct {
	Since      time.Time `json:"since"`
	GroupOrder []Group   `json:"groups"`
	Total      int       `json:"total"`
}

// Selector builds digest selections from the scored corpus. Rendering and
// delivery live with the notification consumers; this only answers
// "top-N by score since T, grouped by primary category".
type Selector struct {
	articles ArticleSource
	minScore float64
}

func NewSelector(articles ArticleSource, minScore float64) *Selector {
	return &Selector{articles: articles, minScore: minScore}
}

// Select gathers the top articles scored at or above the floor since the
// cutoff, grouped by primary category in the fixed category order, capped
// per group. Input ordering from the store (descending score) is preserved
// inside each group.
func (s *Selector) Select(ctx context.Context, since time.Time, limit int) (*Digest, error) {
	articles, err := s.articles.TopSince(ctx, since, s.minScore, limit)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Article)
	for _, a := range articles {
		cat := primaryCategory(a)
		if len(grouped[cat]) >= perCategoryCap {
			continue
		}
		grouped[cat] = append(grouped[cat], a)
	}

	d := &Digest{Since: since}
	for _, cat := range append(models.ValidCategories, uncategorized) {
		if group, ok := grouped[cat]; ok {
			d.GroupOrder = append(d.GroupOrder, Group{Category: cat, Articles: group})
			d.Total += len(group)
		}
	}
	return d, nil
}

// MarkDelivered flags the digest's articles so the next selection skips
// them. Called by the notification consumer after a successful send.
func (s *Selector) MarkDelivered(ctx context.Context, d *Digest) error {
	var ids []primitive.ObjectID
	for _, g := range d.GroupOrder {
		for _, a := range g.Articles {
			ids = append(ids, a.ID)
		}
	}
	return s.articles.MarkDigestIncluded(ctx, ids)
}

// primaryCategory is the judge's first (preferred) category.
func primaryCategory(a models.Article) string {
	if len(a.Categories) == 0 {
		return uncategorized
	}
	return a.Categories[0]
}
