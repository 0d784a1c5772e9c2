// Package goquery provides HTML normalization and link extraction for
// siteindex using CSS-selector-based DOM traversal.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/apotheon-labs/siteindex"
)

// strippedSelector matches the subtrees whose text never belongs in a
// page's visible body.
const strippedSelector = "script, style, noscript, svg"

// Ensure Normalizer implements siteindex.Normalizer at compile time.
var _ siteindex.Normalizer = (*Normalizer)(nil)

// Normalizer converts raw HTML documents into siteindex.Page records.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize parses raw HTML and extracts the page's title, meta description,
// canonical URL, h1-h3 headings in document order (capped at
// siteindex.MaxHeadings), and whitespace-collapsed visible body text with
// script/style/noscript/svg subtrees removed.
func (n *Normalizer) Normalize(raw string, sourceURL string) (*siteindex.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINVALID, "failed to parse HTML for %s: %v", sourceURL, err)
	}

	page := &siteindex.Page{
		Slug:     siteindex.SlugFromURL(sourceURL),
		URL:      sourceURL,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Headings: []string{},
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		page.Description = strings.TrimSpace(desc)
	}
	if canonical, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href"); ok {
		page.CanonicalURL = strings.TrimSpace(canonical)
	}

	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if heading := strings.TrimSpace(sel.Text()); heading != "" {
			page.Headings = append(page.Headings, heading)
		}
		return len(page.Headings) < siteindex.MaxHeadings
	})

	doc.Find(strippedSelector).Remove()
	body := doc.Find("body")
	text := body.Text()
	if body.Length() == 0 {
		text = doc.Text()
	}
	page.BodyText = strings.Join(strings.Fields(text), " ")

	return page, nil
}
