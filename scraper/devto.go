package scraper

import (
	"context"
	"fmt"
	"sync"

	"tech-radar/logger"
)

var devtoTags = []string{"ai", "nextjs", "react", "devops", "docker", "webdev"}

const devtoPerTag = 10

// DevToAdapter pulls top articles per tag from the dev.to REST API. Tag
// fan-out runs in parallel; results are deduplicated by URL before
// returning since one article often carries several watched tags.
type DevToAdapter struct {
	apiKey string
}

func NewDevToAdapter(apiKey string) *DevToAdapter {
	return &DevToAdapter{apiKey: apiKey}
}

func (d *DevToAdapter) Name() string { return "devto" }
func (d *DevToAdapter) Kind() Kind   { return KindAPI }

type devtoArticle struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	CoverImage  string `json:"cover_image"`
	SocialImage string `json:"social_image"`
	User        struct {
		Username string `json:"username"`
	} `json:"user"`
}

func (d *DevToAdapter) Fetch(ctx context.Context) ([]Item, error) {
	headers := map[string]string{}
	if d.apiKey != "" {
		headers["api-key"] = d.apiKey
	}

	var (
		mu       sync.Mutex
		articles []devtoArticle
		wg       sync.WaitGroup
	)
	for _, tag := range devtoTags {
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()
			url := fmt.Sprintf("https://dev.to/api/articles?tag=%s&per_page=%d&top=1", tag, devtoPerTag)
			var page []devtoArticle
			if err := getJSON(ctx, url, headers, &page); err != nil {
				logger.Log.Debugf("[devto] tag %s failed: %v", tag, err)
				return
			}
			mu.Lock()
			articles = append(articles, page...)
			mu.Unlock()
		}(tag)
	}
	wg.Wait()

	seen := make(map[string]bool)
	items := make([]Item, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" || seen[a.URL] {
			continue
		}
		seen[a.URL] = true

		image := a.CoverImage
		if image == "" {
			image = a.SocialImage
		}
		items = append(items, Item{
			SourceURL:      a.URL,
			Title:          a.Title,
			ContentSnippet: a.Description,
			Author:         a.User.Username,
			PublishedAt:    parseTime(a.PublishedAt),
			ImageURL:       image,
		})
	}
	return items, nil
}
