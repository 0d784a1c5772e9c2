package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/apotheon-labs/siteindex"
)

// Crawl defaults.
const (
	DefaultMaxPages = 50
	DefaultMaxDepth = 3
	DefaultRPS      = 2.0
)

// Ensure Crawler implements siteindex.PageSource at compile time.
var _ siteindex.PageSource = (*Crawler)(nil)

// Crawler discovers and fetches same-origin pages breadth-first, starting
// from BaseURL. The base URL is at depth 0; a link found on a page at depth
// d is fetched only when d+1 <= MaxDepth and fewer than MaxPages pages have
// been produced. Per-URL failures become skipped outcomes and never abort
// the crawl.
type Crawler struct {
	BaseURL    string
	MaxPages   int
	MaxDepth   int
	Fetcher    siteindex.Fetcher
	Normalizer siteindex.Normalizer
	Links      siteindex.LinkExtractor

	// Sitemaps, when set, seeds the frontier with the site's published
	// sitemap URLs at depth 1 before the walk begins.
	Sitemaps siteindex.SitemapDiscoverer

	// RateLimiter, when set, throttles fetches per domain.
	RateLimiter *DomainLimiter

	// RetryDelays overrides the fetch retry backoff. Nil means
	// DefaultRetryDelays; tests use short delays.
	RetryDelays []time.Duration
}

// Pages walks the site and emits one FetchOutcome per considered URL in
// breadth-first order. The walk ends when the frontier is exhausted, the
// page budget is reached, or ctx is canceled.
func (c *Crawler) Pages(ctx context.Context, emit func(siteindex.FetchOutcome)) error {
	origin, err := url.Parse(c.BaseURL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return siteindex.Errorf(siteindex.EINVALID, "invalid crawl base URL %q", c.BaseURL)
	}

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	maxDepth := c.MaxDepth
	if maxDepth < 0 {
		maxDepth = 0
	}
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	frontier := NewFrontier()
	frontier.Push(c.BaseURL, 0)
	c.seedFromSitemap(ctx, frontier, maxDepth)

	produced := 0
	for produced < maxPages {
		if err := ctx.Err(); err != nil {
			return err
		}
		pageURL, depth, ok := frontier.Pop()
		if !ok {
			break
		}

		if c.RateLimiter != nil {
			if err := c.RateLimiter.Wait(ctx, origin.Host); err != nil {
				return err
			}
		}

		html, err := fetchWithRetry(ctx, c.Fetcher, pageURL, delays)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			emit(siteindex.FetchOutcome{URL: pageURL, SkipReason: skipReason(err)})
			continue
		}

		page, err := c.Normalizer.Normalize(html, pageURL)
		if err != nil {
			emit(siteindex.FetchOutcome{URL: pageURL, SkipReason: skipReason(err)})
			continue
		}

		emit(siteindex.FetchOutcome{URL: pageURL, Page: page})
		produced++

		if c.Links == nil || depth+1 > maxDepth {
			continue
		}
		links, err := c.Links.ExtractLinks(html, pageURL, origin)
		if err != nil {
			continue
		}
		for _, link := range links {
			frontier.Push(link, depth+1)
		}
	}
	return nil
}

// skipReason renders a per-URL failure for the FetchOutcome. Application
// errors already carry a readable message; transport errors keep their raw
// text so the skip is diagnosable.
func skipReason(err error) string {
	if siteindex.ErrorCode(err) == siteindex.EINTERNAL {
		return err.Error()
	}
	return siteindex.ErrorMessage(err)
}

// seedFromSitemap enqueues published sitemap URLs at depth 1. Discovery
// failures are ignored; the breadth-first walk alone still covers the site.
func (c *Crawler) seedFromSitemap(ctx context.Context, frontier *Frontier, maxDepth int) {
	if c.Sitemaps == nil || maxDepth < 1 {
		return
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, c.BaseURL)
	if err != nil {
		return
	}
	for _, u := range urls {
		frontier.Push(u, 1)
	}
}
