package cleaner

import (
	"regexp"
	"strings"
)

// boilerplateRe matches promotional fragments stripped from extracted text.
// Case-insensitive, no word-boundary requirement: the phrases are removed
// even when glued to surrounding words.
var boilerplateRe = regexp.MustCompile(`(?i)continue reading|read more|more for you|advertisement`)

// paragraphBreakRe matches any whitespace run containing at least two
// newlines. Such runs mark a paragraph boundary.
var paragraphBreakRe = regexp.MustCompile(`[ \t\r\f\v]*\n[ \t\r\f\v]*\n\s*`)

// spaceRunRe matches any other whitespace run, single newlines included.
var spaceRunRe = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace and strips boilerplate phrases from text.
//
// Whitespace runs containing two or more newlines become exactly one blank
// line; every other run becomes a single space; boilerplate phrases are
// removed; the result is trimmed. Normalize is idempotent: each paragraph is
// reduced to a fixed point, since collapsing can expose a phrase split
// across whitespace and stripping a phrase can in turn join two runs.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	paragraphs := paragraphBreakRe.Split(text, -1)
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = normalizeParagraph(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

// normalizeParagraph alternates whitespace collapse and phrase stripping
// until the paragraph stops changing, then trims it.
func normalizeParagraph(p string) string {
	for {
		next := spaceRunRe.ReplaceAllString(p, " ")
		next = boilerplateRe.ReplaceAllString(next, "")
		if next == p {
			return strings.TrimSpace(p)
		}
		p = next
	}
}
