// Package textclean turns post HTML into plain text.
package textclean

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// spaceRun matches runs of ASCII and unicode whitespace, including the
// zero width and ideographic spaces common in Weibo posts
var spaceRun = regexp.MustCompile(`[\s\x{0085}\x{00a0}\x{1680}\x{2000}-\x{200b}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}]+`)

// Cleaner converts HTML fragments to text
type Cleaner struct {
	// MergeSpaces collapses whitespace runs to one space and trims the result
	MergeSpaces bool
}

// New returns a Cleaner that merges whitespace
func New() *Cleaner {
	return &Cleaner{MergeSpaces: true}
}

// Clean unescapes entities, strips every tag keeping inner text, and
// optionally collapses whitespace. Empty input is returned unchanged.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return text
	}

	text = html.UnescapeString(text)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err == nil {
		doc.Find("script, style").Remove()
		doc.Find("br").ReplaceWithHtml("\n")
		text = doc.Text()
	}

	if c.MergeSpaces {
		text = MergeSpaces(text)
	}
	return text
}

// MergeSpaces collapses whitespace runs to a single space and trims both ends
func MergeSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
