package fallback

import (
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Trafilatura extracts article text with the trafilatura algorithm, a
// recall-oriented boilerplate remover that handles pages the selector
// cascade cannot.
type Trafilatura struct{}

var _ Extractor = (*Trafilatura)(nil)

// NewTrafilatura creates a Trafilatura extractor.
func NewTrafilatura() *Trafilatura {
	return &Trafilatura{}
}

func (t *Trafilatura) Name() string { return "trafilatura" }

func (t *Trafilatura) Extract(pageURL, language, rawHTML string) (*Result, error) {
	opts := trafilatura.Options{
		EnableFallback: true,
		TargetLanguage: language,
	}
	if u, err := nurl.Parse(pageURL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, fmt.Errorf("trafilatura: extract: %w", err)
	}

	return &Result{
		Text:        strings.TrimSpace(result.ContentText),
		ContentHTML: renderNode(result.ContentNode),
	}, nil
}

// renderNode serializes an HTML node, returning "" for nil nodes.
func renderNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
