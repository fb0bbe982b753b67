package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ArticleMeta holds the metadata recovered from a cleaned document.
// Every field may be empty; metadata absence is never an error.
type ArticleMeta struct {
	Title       string
	PublishDate string
	Authors     []string
}

// RecoverMetadata locates title, publish date and authors via their own
// selector cascades, independently of how content location went.
func RecoverMetadata(doc *goquery.Document) ArticleMeta {
	return ArticleMeta{
		Title:       recoverTitle(doc),
		PublishDate: recoverDate(doc),
		Authors:     recoverAuthors(doc),
	}
}

// recoverTitle prefers the document's first h1. When that is missing or
// empty it falls through the title cascade, taking the first non-empty
// match.
func recoverTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	for _, matcher := range titleMatchers {
		if t := strings.TrimSpace(doc.FindMatcher(matcher).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// recoverDate returns the raw publish date from the first matching element,
// preferring its machine-readable datetime attribute over its visible text.
// The value is returned exactly as found; no format parsing.
func recoverDate(doc *goquery.Document) string {
	for _, matcher := range dateMatchers {
		sel := doc.FindMatcher(matcher).First()
		if sel.Length() == 0 {
			continue
		}
		if dt, ok := sel.Attr("datetime"); ok {
			return dt
		}
		return strings.TrimSpace(sel.Text())
	}
	return ""
}

// recoverAuthors aggregates every selector tier, appending each trimmed
// byline once. Dedup is case-sensitive: "Jane Doe" and "jane doe" are
// distinct entries.
func recoverAuthors(doc *goquery.Document) []string {
	authors := []string{}
	seen := make(map[string]bool)
	for _, matcher := range authorMatchers {
		doc.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
			name := strings.TrimSpace(s.Text())
			if name != "" && !seen[name] {
				seen[name] = true
				authors = append(authors, name)
			}
		})
	}
	return authors
}
