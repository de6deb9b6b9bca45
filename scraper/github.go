package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tech-radar/config"
	"tech-radar/logger"
)

// releaseWindow is how far back a release still counts as news.
const releaseWindow = 7 * 24 * time.Hour

// GitHubReleasesAdapter polls the watched repositories for fresh stable
// releases. Per-repo fetches fan out in parallel; a single repo failure
// only loses that repo's releases.
type GitHubReleasesAdapter struct {
	repos []config.WatchedRepo
}

func NewGitHubReleasesAdapter(repos []config.WatchedRepo) *GitHubReleasesAdapter {
	return &GitHubReleasesAdapter{repos: repos}
}

func (g *GitHubReleasesAdapter) Name() string { return "github-releases" }
func (g *GitHubReleasesAdapter) Kind() Kind   { return KindAPI }

type githubRelease struct {
	HTMLURL     string `json:"html_url"`
	TagName     string `json:"tag_name"`
	Body        string `json:"body"`
	Prerelease  bool   `json:"prerelease"`
	PublishedAt string `json:"published_at"`
	Author      struct {
		Login string `json:"login"`
	} `json:"author"`
}

func (g *GitHubReleasesAdapter) Fetch(ctx context.Context) ([]Item, error) {
	cutoff := time.Now().Add(-releaseWindow)
	headers := map[string]string{"Accept": "application/vnd.github+json"}

	var (
		mu    sync.Mutex
		items []Item
		wg    sync.WaitGroup
	)
	for _, repo := range g.repos {
		wg.Add(1)
		go func(repo config.WatchedRepo) {
			defer wg.Done()
			url := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases?per_page=3", repo.Owner, repo.Repo)
			var releases []githubRelease
			if err := getJSON(ctx, url, headers, &releases); err != nil {
				logger.Log.Debugf("[github-releases] %s/%s failed: %v", repo.Owner, repo.Repo, err)
				return
			}
			for _, rel := range releases {
				published := parseTime(rel.PublishedAt)
				if rel.Prerelease || published == nil || published.Before(cutoff) {
					continue
				}
				mu.Lock()
				items = append(items, Item{
					SourceURL:      rel.HTMLURL,
					Title:          fmt.Sprintf("%s %s released", repo.Name, rel.TagName),
					ContentSnippet: rel.Body,
					Author:         rel.Author.Login,
					PublishedAt:    published,
				})
				mu.Unlock()
			}
		}(repo)
	}
	wg.Wait()

	return items, nil
}
