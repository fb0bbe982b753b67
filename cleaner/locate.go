package cleaner

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// minArticleLength is the normalized-text threshold separating real article
// paragraphs from stray UI text inside a matched container.
const minArticleLength = 100

// embeddedNoiseMatcher matches sub-elements that are never article content
// even inside a legitimate container.
var embeddedNoiseMatcher = cascadia.MustCompile("script, style, iframe, noscript, form")

// LocateContent runs the content selector cascade over the cleaned document.
//
// Tiers are tried in priority order. Within a tier, every matching container
// is stripped of embedded script/style noise, its visible text normalized
// and kept when longer than minArticleLength. The first tier keeping at
// least one block wins outright: its blocks are joined with blank lines and
// lower tiers are never consulted. Returns the winning text, the winning
// containers' serialized HTML, and whether any tier matched.
func LocateContent(doc *goquery.Document) (text, contentHTML string, found bool) {
	for _, matcher := range contentMatchers {
		var blocks, htmlParts []string
		doc.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
			s.FindMatcher(embeddedNoiseMatcher).Remove()
			block := Normalize(s.Text())
			if utf8.RuneCountInString(block) > minArticleLength {
				blocks = append(blocks, block)
				if h, err := goquery.OuterHtml(s); err == nil {
					htmlParts = append(htmlParts, h)
				}
			}
		})
		if len(blocks) > 0 {
			return strings.Join(blocks, "\n\n"), strings.Join(htmlParts, "\n"), true
		}
	}
	return "", "", false
}
