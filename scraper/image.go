package scraper

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

// ExtractFeedImage finds the best-effort thumbnail for a feed entry, in
// order of reliability: typed image enclosure, any enclosure, media:content
// extension, the feed's own item image, then the first usable image in the
// embedded HTML body.
func ExtractFeedImage(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	// many feeds attach an image enclosure without a type
	for _, enc := range entry.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}

	if media, ok := entry.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
		for _, thumb := range media["thumbnail"] {
			if url := thumb.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}

	body := entry.Content
	if body == "" {
		body = entry.Description
	}
	return ExtractImageFromHTML(body)
}

// ExtractImageFromHTML pulls the lead image out of an HTML fragment using
// readability, falling back to the first <img> tag when readability finds
// no article image.
func ExtractImageFromHTML(htmlStr string) string {
	if strings.TrimSpace(htmlStr) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	if article, err := readability.FromDocument(doc, nil); err == nil && article.Image != "" {
		return article.Image
	}
	return firstImgSrc(doc)
}

func firstImgSrc(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "img" {
		for _, attr := range n.Attr {
			if attr.Key == "src" && attr.Val != "" {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src := firstImgSrc(c); src != "" {
			return src
		}
	}
	return ""
}
