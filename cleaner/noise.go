package cleaner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Noise pattern tables. Patterns match case-insensitively as substrings of
// the id or class attribute, so "Advertisement-Block" and "myAdvertisementUnit"
// both count. Initialized once and shared read-only by every extraction.
var (
	noiseIDPatterns = []string{
		"continue-reading", "read-more", "moreButton", "more-content",
		"below-article", "bottom-article", "mid-article", "article-interruption",
		"ad-insertion", "advertisement", "sponsored-content", "taboola",
		"outbrain", "related-articles", "suggested-content", "newsletter-signup",
		"subscription-prompt", "more-for-you", "trending-stories",
	}

	noiseClassPatterns = []string{
		"continue-reading", "read-more-button", "article-break",
		"article-interstitial", "ad-break", "sponsored-content",
		"newsletter-unit", "subscription-unit", "paywall-container",
		"below-article-content", "article-interruption", "story-interrupt",
		"mid-article-unit", "article-divide", "more-for-you",
		"content-separation", "story-break", "loading-block",
	}

	noiseTextPatterns = []string{
		"continue reading", "read more", "more for you", "sponsored content",
		"advertisement", "recommended", "popular stories", "trending now",
		"you might like", "more stories", "more articles", "keep reading",
		"load more",
	}
)

var (
	noiseIDRes    = compileNoisePatterns(noiseIDPatterns)
	noiseClassRes = compileNoisePatterns(noiseClassPatterns)
	noiseTextRes  = compileNoisePatterns(noiseTextPatterns)
)

func compileNoisePatterns(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

// interruptionTags bounds the text-pattern ancestor walk: only these
// container tags may be deleted when they hold a matching text node.
var interruptionTags = map[string]bool{
	"button":  true,
	"a":       true,
	"div":     true,
	"section": true,
}

// interruptionTextLimit is the rendered-text ceiling for the ancestor walk.
// Containers at or above it survive even when they contain a noise phrase.
const interruptionTextLimit = 1000

// StripNoise removes promotional and interstitial elements from article
// markup and returns the cleaned markup serialized back to a string.
//
// Three passes run in order: elements whose id matches a noise pattern,
// elements whose class matches, then text-pattern matches whose small
// enclosing containers are deleted one ancestor at a time. Empty input is
// returned unchanged, as is input the parser rejects.
func StripNoise(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return rawHTML
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, re := range noiseIDRes {
		removeByAttr(doc, "id", re)
	}
	for _, re := range noiseClassRes {
		removeByAttr(doc, "class", re)
	}
	for _, re := range noiseTextRes {
		removeInterruptions(doc, re)
	}

	out, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return out
}

// removeByAttr deletes every element whose named attribute matches re,
// subtree included.
func removeByAttr(doc *goquery.Document, attr string, re *regexp.Regexp) {
	doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok && re.MatchString(v) {
			s.Remove()
		}
	})
}

// removeInterruptions finds text nodes matching re and deletes their small
// enclosing interruption containers. The walk climbs from the text node's
// parent, deleting while the ancestor is an interruption tag whose total
// rendered text stays under interruptionTextLimit, so a large section that
// merely mentions a noise phrase survives.
func removeInterruptions(doc *goquery.Document, re *regexp.Regexp) {
	var matches []*html.Node
	for _, root := range doc.Nodes {
		collectMatchingText(root, re, &matches)
	}
	for _, textNode := range matches {
		parent := textNode.Parent
		for parent != nil && parent.Type == html.ElementNode &&
			interruptionTags[parent.Data] && renderedTextLen(parent) < interruptionTextLimit {
			next := parent.Parent
			if next == nil {
				break
			}
			next.RemoveChild(parent)
			parent = next
		}
	}
}

// collectMatchingText appends every text node under n whose content matches re.
func collectMatchingText(n *html.Node, re *regexp.Regexp, out *[]*html.Node) {
	if n.Type == html.TextNode && re.MatchString(n.Data) {
		*out = append(*out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectMatchingText(c, re, out)
	}
}

// renderedTextLen returns the rune count of all text under n.
func renderedTextLen(n *html.Node) int {
	total := 0
	var walk func(*html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.TextNode {
			total += utf8.RuneCountInString(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return total
}
