package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tech-radar/logger"
)

var trendingLanguages = []string{"javascript", "typescript", "python", "go"}

// GitHubTrendingAdapter scrapes the daily trending pages. Languages are
// fetched one at a time (this is a scrape, not an API) and a failed
// language only loses its own results.
type GitHubTrendingAdapter struct{}

func NewGitHubTrendingAdapter() *GitHubTrendingAdapter { return &GitHubTrendingAdapter{} }

func (g *GitHubTrendingAdapter) Name() string { return "github-trending" }
func (g *GitHubTrendingAdapter) Kind() Kind   { return KindScrape }

func (g *GitHubTrendingAdapter) Fetch(ctx context.Context) ([]Item, error) {
	var items []Item
	now := time.Now()

	for _, lang := range trendingLanguages {
		url := fmt.Sprintf("https://github.com/trending/%s?since=daily", lang)
		body, err := getHTML(ctx, url, nil)
		if err != nil {
			logger.Log.Warnf("[github-trending] %s failed: %v", lang, err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			logger.Log.Warnf("[github-trending] %s parse failed: %v", lang, err)
			continue
		}

		doc.Find("article.Box-row").Each(func(_ int, sel *goquery.Selection) {
			repoPath, ok := sel.Find("h2 a").Attr("href")
			if !ok || repoPath == "" {
				return
			}
			description := strings.TrimSpace(sel.Find("p").Text())
			stars := strings.TrimSpace(sel.Find(`[aria-label*="star"]`).First().Text())

			snippet := description
			if stars != "" {
				snippet += " | ★ " + stars
			}

			published := now
			items = append(items, Item{
				SourceURL:      "https://github.com" + repoPath,
				Title:          "[GitHub Trending] " + strings.TrimPrefix(strings.ReplaceAll(repoPath, "/", " / "), " / "),
				ContentSnippet: snippet,
				Author:         repoOwner(repoPath),
				PublishedAt:    &published,
			})
		})
	}

	return items, nil
}

func repoOwner(repoPath string) string {
	parts := strings.Split(strings.TrimPrefix(repoPath, "/"), "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
