package siteindex

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// MaxHeadings caps the number of headings retained per page.
const MaxHeadings = 100

// Page is the transient, normalized form of one fetched document. It is
// produced by a Normalizer during a reindex and consumed by the chunking and
// persistence stages; it is never stored directly.
type Page struct {
	Slug         string   `json:"slug"`
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	CanonicalURL string   `json:"canonicalUrl,omitempty"`
	Headings     []string `json:"headings"`
	BodyText     string   `json:"bodyText"`
}

// PageDoc is the persisted per-page content record, keyed by slug and
// overwritten wholesale when its slug is reindexed.
type PageDoc struct {
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Headings    []string  `json:"headings"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	IndexedAt   time.Time `json:"indexedAt"`
}

// SitemapEntry is the lightweight per-page listing record, kept one-to-one
// with PageDoc by slug. The pipeline always writes both together.
type SitemapEntry struct {
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	Title         string    `json:"title,omitempty"`
	Description   string    `json:"description,omitempty"`
	LastIndexedAt time.Time `json:"lastIndexedAt"`
}

// FetchOutcome reports the result of fetching and normalizing one document.
// Exactly one of Page and SkipReason is set: a skipped document carries the
// reason it was passed over so that skips are observable rather than
// silently discarded.
type FetchOutcome struct {
	URL        string
	Page       *Page
	SkipReason string
}

// Skipped returns true if the document was passed over.
func (o FetchOutcome) Skipped() bool { return o.Page == nil }

// Fetcher retrieves a document over the network.
type Fetcher interface {
	// Fetch returns the response body for the given URL.
	// Responses that are not 2xx or not text/html fail with EINVALID.
	Fetch(ctx context.Context, url string) (body string, err error)
}

// Normalizer converts one raw HTML document into a Page.
type Normalizer interface {
	Normalize(raw string, sourceURL string) (*Page, error)
}

// PageSource produces the finite sequence of pages for one reindex pass.
// Implementations include the breadth-first web crawler and the local
// build-output walker. The emit callback is invoked once per considered
// document, in source order; per-document failures surface as skipped
// outcomes and never abort the pass.
type PageSource interface {
	Pages(ctx context.Context, emit func(FetchOutcome)) error
}

// SitemapDiscoverer finds candidate page URLs from a site's published
// sitemap. Used to seed the crawl frontier; discovery failure is not fatal.
type SitemapDiscoverer interface {
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}

// LinkExtractor finds crawlable same-origin links in an HTML document.
type LinkExtractor interface {
	// ExtractLinks returns absolute http/https URLs found in html, resolved
	// against pageURL, with fragments stripped and other origins excluded.
	ExtractLinks(html string, pageURL string, origin *url.URL) ([]string, error)
}

// slugStripRe matches runs of characters not allowed in slugs.
var slugStripRe = regexp.MustCompile(`[^A-Za-z0-9/_-]+`)

// SlugFromURL derives a page's slug from its URL path. The root path maps to
// "home"; otherwise any run of characters outside [A-Za-z0-9/_-] collapses
// to a single hyphen and leading/trailing hyphens and slashes are trimmed.
// An empty result also yields "home".
func SlugFromURL(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.TrimSuffix(path, "/")
	slug := slugStripRe.ReplaceAllString(path, "-")
	slug = strings.Trim(slug, "-/")
	if slug == "" {
		return "home"
	}
	return slug
}
