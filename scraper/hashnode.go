package scraper

import "context"

const hashnodeGQL = "https://gql.hashnode.com"

const hashnodeQuery = `
  query {
    feed(first: 20, filter: { type: FEATURED }) {
      edges {
        node {
          title
          url
          brief
          publishedAt
          author { username }
        }
      }
    }
  }
`

// HashnodeAdapter fetches the featured feed from Hashnode's public
// GraphQL endpoint.
type HashnodeAdapter struct{}

func NewHashnodeAdapter() *HashnodeAdapter { return &HashnodeAdapter{} }

func (h *HashnodeAdapter) Name() string { return "hashnode" }
func (h *HashnodeAdapter) Kind() Kind   { return KindAPI }

type hashnodeResponse struct {
	Data struct {
		Feed struct {
			Edges []struct {
				Node struct {
					Title       string `json:"title"`
					URL         string `json:"url"`
					Brief       string `json:"brief"`
					PublishedAt string `json:"publishedAt"`
					Author      struct {
						Username string `json:"username"`
					} `json:"author"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"feed"`
	} `json:"data"`
}

func (h *HashnodeAdapter) Fetch(ctx context.Context) ([]Item, error) {
	var resp hashnodeResponse
	payload := map[string]string{"query": hashnodeQuery}
	if err := postJSON(ctx, hashnodeGQL, nil, payload, &resp); err != nil {
		return nil, err
	}

	edges := resp.Data.Feed.Edges
	items := make([]Item, 0, len(edges))
	for _, edge := range edges {
		node := edge.Node
		items = append(items, Item{
			SourceURL:      node.URL,
			Title:          node.Title,
			ContentSnippet: node.Brief,
			Author:         node.Author.Username,
			PublishedAt:    parseTime(node.PublishedAt),
		})
	}
	return items, nil
}
