package scraper

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"tech-radar/logger"
)

var npmKeywords = []string{"ai", "llm", "agent", "mcp", "nextjs", "bun"}

// NpmSearchAdapter surfaces popular packages matching the watched
// keywords via the npm registry search API, deduplicated by package name
// across keyword queries.
type NpmSearchAdapter struct{}

func NewNpmSearchAdapter() *NpmSearchAdapter { return &NpmSearchAdapter{} }

func (n *NpmSearchAdapter) Name() string { return "npm-trending" }
func (n *NpmSearchAdapter) Kind() Kind   { return KindAPI }

type npmSearchResponse struct {
	Objects []struct {
		Package struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Date        string `json:"date"`
			Publisher   struct {
				Username string `json:"username"`
			} `json:"publisher"`
		} `json:"package"`
	} `json:"objects"`
}

func (n *NpmSearchAdapter) Fetch(ctx context.Context) ([]Item, error) {
	var (
		mu        sync.Mutex
		responses []npmSearchResponse
		wg        sync.WaitGroup
	)
	for _, kw := range npmKeywords {
		wg.Add(1)
		go func(kw string) {
			defer wg.Done()
			searchURL := fmt.Sprintf(
				"https://registry.npmjs.org/-/v1/search?text=%s&size=5&quality=0.5&popularity=1.0&maintenance=0.5",
				url.QueryEscape(kw),
			)
			var resp npmSearchResponse
			if err := getJSON(ctx, searchURL, nil, &resp); err != nil {
				logger.Log.Debugf("[npm-trending] query %s failed: %v", kw, err)
				return
			}
			mu.Lock()
			responses = append(responses, resp)
			mu.Unlock()
		}(kw)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var items []Item
	for _, resp := range responses {
		for _, obj := range resp.Objects {
			pkg := obj.Package
			if pkg.Name == "" || seen[pkg.Name] {
				continue
			}
			seen[pkg.Name] = true

			title := "[npm] " + pkg.Name
			if pkg.Description != "" {
				title += " — " + truncate(pkg.Description, 80)
			}
			items = append(items, Item{
				SourceURL:      "https://www.npmjs.com/package/" + pkg.Name,
				Title:          title,
				ContentSnippet: pkg.Description,
				Author:         pkg.Publisher.Username,
				PublishedAt:    parseTime(pkg.Date),
			})
		}
	}
	return items, nil
}
