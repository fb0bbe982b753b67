// Package fallback provides generic boilerplate-removal extractors used when
// the structured selector cascade finds no article content.
package fallback

import "fmt"

// Result is the output of a fallback extraction.
type Result struct {
	// Text is the extracted plain article text.
	Text string

	// ContentHTML is the extracted content region as HTML, when the
	// underlying algorithm exposes one. Used for Markdown rendering.
	ContentHTML string
}

// Extractor is a last-resort article extractor. Implementations receive the
// cleaned page markup and return best-effort article text, or an error when
// the algorithm produced nothing usable.
type Extractor interface {
	// Name returns the extractor identifier (e.g. "trafilatura").
	Name() string

	// Extract runs boilerplate removal over rawHTML. pageURL resolves
	// relative references; language is a hint for language-aware
	// algorithms.
	Extract(pageURL, language, rawHTML string) (*Result, error)
}

// New returns the named Extractor implementation.
func New(name string) (Extractor, error) {
	switch name {
	case "trafilatura", "":
		return NewTrafilatura(), nil
	case "readability":
		return NewReadability(), nil
	default:
		return nil, fmt.Errorf("fallback: unknown extractor %q", name)
	}
}
