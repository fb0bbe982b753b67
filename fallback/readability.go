package fallback

import (
	"fmt"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Readability extracts article text with the Mozilla Readability algorithm.
// It ignores the language hint; the algorithm is language-agnostic.
type Readability struct{}

var _ Extractor = (*Readability)(nil)

// NewReadability creates a Readability extractor.
func NewReadability() *Readability {
	return &Readability{}
}

func (r *Readability) Name() string { return "readability" }

func (r *Readability) Extract(pageURL, language, rawHTML string) (*Result, error) {
	parsedURL, err := nurl.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability: parse url: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("readability: extract: %w", err)
	}

	return &Result{
		Text:        strings.TrimSpace(article.TextContent),
		ContentHTML: article.Content,
	}, nil
}
