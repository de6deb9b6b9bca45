package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tech-radar/logger"
)

const productHuntGQL = "https://api.producthunt.com/v2/api/graphql"

// ProductHuntAdapter fetches yesterday's top launches. The API requires a
// token; without one the adapter returns no items rather than failing the
// scan.
type ProductHuntAdapter struct {
	token string
}

func NewProductHuntAdapter(token string) *ProductHuntAdapter {
	return &ProductHuntAdapter{token: token}
}

func (p *ProductHuntAdapter) Name() string { return "producthunt" }
func (p *ProductHuntAdapter) Kind() Kind   { return KindAPI }

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node struct {
					Name       string `json:"name"`
					Tagline    string `json:"tagline"`
					URL        string `json:"url"`
					VotesCount int    `json:"votesCount"`
					CreatedAt  string `json:"createdAt"`
					Topics     struct {
						Edges []struct {
							Node struct {
								Name string `json:"name"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"topics"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
}

func (p *ProductHuntAdapter) Fetch(ctx context.Context) ([]Item, error) {
	if p.token == "" {
		logger.Log.Warn("[producthunt] no token configured, skipping")
		return nil, nil
	}

	postedAfter := time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	query := fmt.Sprintf(`
  query {
    posts(order: VOTES, first: 20, postedAfter: %q) {
      edges {
        node {
          name
          tagline
          url
          votesCount
          createdAt
          topics { edges { node { name } } }
        }
      }
    }
  }`, postedAfter)

	headers := map[string]string{"Authorization": "Bearer " + p.token}
	var resp productHuntResponse
	if err := postJSON(ctx, productHuntGQL, headers, map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}

	edges := resp.Data.Posts.Edges
	items := make([]Item, 0, len(edges))
	for _, edge := range edges {
		node := edge.Node
		topics := make([]string, 0, len(node.Topics.Edges))
		for _, t := range node.Topics.Edges {
			topics = append(topics, t.Node.Name)
		}
		items = append(items, Item{
			SourceURL:      node.URL,
			Title:          node.Name + " — " + node.Tagline,
			ContentSnippet: fmt.Sprintf("%d votes. Topics: %s", node.VotesCount, strings.Join(topics, ", ")),
			PublishedAt:    parseTime(node.CreatedAt),
		})
	}
	return items, nil
}
