package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/apotheon-labs/siteindex"
)

// Ensure LinkExtractor implements siteindex.LinkExtractor.
var _ siteindex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor finds same-origin anchors in HTML documents.
type LinkExtractor struct{}

// NewLinkExtractor returns a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks implements siteindex.LinkExtractor.
func (e *LinkExtractor) ExtractLinks(html string, pageURL string, origin *url.URL) ([]string, error) {
	return ExtractLinks(html, pageURL, origin)
}

// ExtractLinks parses HTML and returns the absolute http/https URLs of all
// anchors, resolved against pageURL and restricted to the origin
// (scheme+host+port) of origin. Fragments are stripped; mailto:, tel:,
// javascript:, and fragment-only links are ignored. Results keep document
// order and are deduplicated by resolved URL.
func ExtractLinks(html string, pageURL string, origin *url.URL) ([]string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINVALID, "invalid page URL %q: %v", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINVALID, "failed to parse HTML for %s: %v", pageURL, err)
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		if isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(page, href)
		if resolved == "" {
			return
		}
		if !sameOrigin(origin, resolved) {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}

// isNonHTTPLink reports whether href uses a scheme that can never lead to a
// crawlable page, or is a same-page fragment.
func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(href, "#")
}

// resolveURL resolves href against the page URL and strips the fragment.
// Returns empty string for unparsable hrefs and non-http(s) results.
func resolveURL(page *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := page.ResolveReference(ref)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// sameOrigin reports whether resolved shares scheme, host, and port with
// origin. Subdomains count as different origins.
func sameOrigin(origin *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Scheme == origin.Scheme && u.Host == origin.Host
}
