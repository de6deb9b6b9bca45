package scraper

import (
	"context"
	"sync"

	"tech-radar/logger"
)

const serperEndpoint = "https://google.serper.dev/search"

var serperQueries = []string{
	"autonomous AI agent",
	"MCP server Model Context Protocol",
	"Next.js Supabase developer tool",
	"AI coding agentic workflow",
	"platform engineering automation",
}

// SerperAdapter runs a fixed set of Google searches through the Serper
// API. Key-gated: without a key it contributes nothing to the scan.
type SerperAdapter struct {
	apiKey string
}

func NewSerperAdapter(apiKey string) *SerperAdapter {
	return &SerperAdapter{apiKey: apiKey}
}

func (s *SerperAdapter) Name() string { return "google-search" }
func (s *SerperAdapter) Kind() Kind   { return KindAPI }

type serperResponse struct {
	Organic []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (s *SerperAdapter) Fetch(ctx context.Context) ([]Item, error) {
	if s.apiKey == "" {
		logger.Log.Warn("[google-search] no SERPER_API_KEY configured, skipping")
		return nil, nil
	}

	headers := map[string]string{"X-API-KEY": s.apiKey}

	var (
		mu        sync.Mutex
		responses []serperResponse
		wg        sync.WaitGroup
	)
	for _, q := range serperQueries {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			payload := map[string]any{"q": q, "num": 10, "gl": "us", "hl": "en"}
			var resp serperResponse
			if err := postJSON(ctx, serperEndpoint, headers, payload, &resp); err != nil {
				logger.Log.Debugf("[google-search] query %q failed: %v", q, err)
				return
			}
			mu.Lock()
			responses = append(responses, resp)
			mu.Unlock()
		}(q)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var items []Item
	for _, resp := range responses {
		for _, hit := range resp.Organic {
			if hit.Link == "" || seen[hit.Link] {
				continue
			}
			seen[hit.Link] = true
			items = append(items, Item{
				SourceURL:      hit.Link,
				Title:          hit.Title,
				ContentSnippet: hit.Snippet,
			})
		}
	}
	return items, nil
}
