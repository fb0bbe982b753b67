package cleaner

import "github.com/andybalholm/cascadia"

// Selector cascades, in priority order: microdata and article-semantic
// selectors first, site-convention class names next, bare structural
// landmarks last. Compiled once at init and shared read-only; a tier earlier
// in the list always beats a later one.
var (
	contentSelectors = []string{
		"article",
		`[itemprop="articleBody"]`,
		".article-content",
		".article-body",
		".story-content",
		".post-content",
		"main article",
		"main .article",
		".main-content article",
		".content-area article",
		".entry-content",
		".post-body",
		".story-body",
		`[role="main"]`,
		".caas-body",
		"main",
		"#main-content",
		".main-content",
	}

	titleSelectors = []string{
		`[itemprop="headline"]`,
		".article-title",
		".entry-title",
		".post-title",
		".story-title",
	}

	dateSelectors = []string{
		`[itemprop="datePublished"]`,
		".article-date",
		".post-date",
		".published-date",
		"time",
	}

	authorSelectors = []string{
		`[itemprop="author"]`,
		".article-author",
		".post-author",
		".author-name",
		".byline",
	}
)

var (
	contentMatchers = compileCascade(contentSelectors)
	titleMatchers   = compileCascade(titleSelectors)
	dateMatchers    = compileCascade(dateSelectors)
	authorMatchers  = compileCascade(authorSelectors)
)

// compileCascade parses each selector up front so per-call extraction never
// pays selector-compilation cost. Panics only on a malformed entry in the
// tables above.
func compileCascade(selectors []string) []cascadia.Selector {
	matchers := make([]cascadia.Selector, len(selectors))
	for i, sel := range selectors {
		matchers[i] = cascadia.MustCompile(sel)
	}
	return matchers
}
