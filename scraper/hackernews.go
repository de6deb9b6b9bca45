package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tech-radar/logger"
)

const hnAPI = "https://hacker-news.firebaseio.com/v0"

const hnStoryLimit = 30

// HackerNewsAdapter fetches the current top stories. Story detail fetches
// fan out in parallel; individual story failures are dropped, not fatal.
type HackerNewsAdapter struct{}

func NewHackerNewsAdapter() *HackerNewsAdapter { return &HackerNewsAdapter{} }

func (h *HackerNewsAdapter) Name() string { return "hackernews" }
func (h *HackerNewsAdapter) Kind() Kind   { return KindAPI }

type hnStory struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
}

func (h *HackerNewsAdapter) Fetch(ctx context.Context) ([]Item, error) {
	var ids []int64
	if err := getJSON(ctx, hnAPI+"/topstories.json", nil, &ids); err != nil {
		return nil, err
	}
	if len(ids) > hnStoryLimit {
		ids = ids[:hnStoryLimit]
	}

	var (
		mu      sync.Mutex
		stories = make([]*hnStory, len(ids))
		wg      sync.WaitGroup
	)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			var story hnStory
			if err := getJSON(ctx, fmt.Sprintf("%s/item/%d.json", hnAPI, id), nil, &story); err != nil {
				logger.Log.Debugf("[hackernews] story %d fetch failed: %v", id, err)
				return
			}
			mu.Lock()
			stories[i] = &story
			mu.Unlock()
		}(i, id)
	}
	wg.Wait()

	items := make([]Item, 0, len(stories))
	for _, story := range stories {
		// Ask HN / text-only posts have no external URL and are skipped
		if story == nil || story.URL == "" {
			continue
		}
		published := time.Unix(story.Time, 0)
		items = append(items, Item{
			SourceURL:      story.URL,
			Title:          story.Title,
			ContentSnippet: story.Text,
			Author:         story.By,
			PublishedAt:    &published,
		})
	}
	return items, nil
}
