package scraper

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// scrapeCooldown is an explicit respectful delay applied after scraping,
// independent of retry backoff, so reruns never hammer the origin.
const scrapeCooldown = 2 * time.Second

// IndieHackersAdapter scrapes the Indie Hackers front page for post links.
type IndieHackersAdapter struct{}

func NewIndieHackersAdapter() *IndieHackersAdapter { return &IndieHackersAdapter{} }

func (i *IndieHackersAdapter) Name() string { return "indie-hackers" }
func (i *IndieHackersAdapter) Kind() Kind   { return KindScrape }

func (i *IndieHackersAdapter) Fetch(ctx context.Context) ([]Item, error) {
	body, err := getHTML(ctx, "https://www.indiehackers.com/", nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var items []Item
	doc.Find(`a[href*="/post/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		title := strings.TrimSpace(sel.Text())
		// anchor fragments and nav links produce junk titles
		if !ok || href == "" || len(title) < 10 {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.indiehackers.com" + href
		}
		if seen[href] {
			return
		}
		seen[href] = true
		items = append(items, Item{
			SourceURL: href,
			Title:     title,
		})
	})

	if err := sleep(ctx, scrapeCooldown); err != nil {
		return items, nil
	}
	return items, nil
}
