package crawl_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apotheon-labs/siteindex"
	"github.com/apotheon-labs/siteindex/crawl"
	"github.com/apotheon-labs/siteindex/mock"
)

// site wires mock fetcher, normalizer, and link extractor around a static
// URL -> outgoing links map. Every page fetches successfully and
// normalizes to a page titled after its URL.
type site struct {
	links   map[string][]string
	fetched []string
}

func (s *site) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			s.fetched = append(s.fetched, url)
			return "<html>" + url + "</html>", nil
		},
	}
}

func (s *site) normalizer() *mock.Normalizer {
	return &mock.Normalizer{
		NormalizeFn: func(_ string, sourceURL string) (*siteindex.Page, error) {
			return &siteindex.Page{URL: sourceURL, Title: sourceURL, BodyText: "body"}, nil
		},
	}
}

func (s *site) linkExtractor() *mock.LinkExtractor {
	return &mock.LinkExtractor{
		ExtractLinksFn: func(_ string, pageURL string, _ *url.URL) ([]string, error) {
			return s.links[pageURL], nil
		},
	}
}

func (s *site) crawler(base string) *crawl.Crawler {
	return &crawl.Crawler{
		BaseURL:     base,
		MaxPages:    50,
		MaxDepth:    3,
		Fetcher:     s.fetcher(),
		Normalizer:  s.normalizer(),
		Links:       s.linkExtractor(),
		RetryDelays: []time.Duration{},
	}
}

func collect(t *testing.T, c *crawl.Crawler) []siteindex.FetchOutcome {
	t.Helper()
	var outcomes []siteindex.FetchOutcome
	err := c.Pages(context.Background(), func(o siteindex.FetchOutcome) {
		outcomes = append(outcomes, o)
	})
	require.NoError(t, err)
	return outcomes
}

func pageURLs(outcomes []siteindex.FetchOutcome) []string {
	var urls []string
	for _, o := range outcomes {
		if !o.Skipped() {
			urls = append(urls, o.URL)
		}
	}
	return urls
}

func TestCrawler_walks_breadth_first(t *testing.T) {
	t.Parallel()

	s := &site{links: map[string][]string{
		"https://example.com/":    {"https://example.com/a", "https://example.com/b"},
		"https://example.com/a":   {"https://example.com/a/x"},
		"https://example.com/b":   {"https://example.com/b/y"},
		"https://example.com/a/x": nil,
		"https://example.com/b/y": nil,
	}}

	outcomes := collect(t, s.crawler("https://example.com/"))

	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/a/x",
		"https://example.com/b/y",
	}, pageURLs(outcomes))
}

func TestCrawler_stops_at_max_depth(t *testing.T) {
	t.Parallel()

	s := &site{links: map[string][]string{
		"https://example.com/":      {"https://example.com/d1"},
		"https://example.com/d1":    {"https://example.com/d1/d2"},
		"https://example.com/d1/d2": {"https://example.com/d1/d2/d3"},
	}}

	c := s.crawler("https://example.com/")
	c.MaxDepth = 1
	outcomes := collect(t, c)

	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/d1",
	}, pageURLs(outcomes))
}

func TestCrawler_stops_at_max_pages(t *testing.T) {
	t.Parallel()

	// A wide fanout: root links to 10 children.
	links := map[string][]string{}
	var children []string
	for _, suffix := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		children = append(children, "https://example.com/"+suffix)
	}
	links["https://example.com/"] = children
	s := &site{links: links}

	c := s.crawler("https://example.com/")
	c.MaxPages = 5
	outcomes := collect(t, c)

	assert.Len(t, pageURLs(outcomes), 5)
}

func TestCrawler_never_fetches_a_URL_twice(t *testing.T) {
	t.Parallel()

	// a and b both link back to the root and to each other.
	s := &site{links: map[string][]string{
		"https://example.com/":  {"https://example.com/a", "https://example.com/b"},
		"https://example.com/a": {"https://example.com/", "https://example.com/b"},
		"https://example.com/b": {"https://example.com/", "https://example.com/a"},
	}}

	collect(t, s.crawler("https://example.com/"))

	seen := make(map[string]int)
	for _, u := range s.fetched {
		seen[u]++
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, "fetched %s more than once", u)
	}
}

func TestCrawler_failed_fetch_becomes_skip_and_crawl_continues(t *testing.T) {
	t.Parallel()

	s := &site{links: map[string][]string{
		"https://example.com/": {"https://example.com/broken", "https://example.com/ok"},
	}}
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, u string) (string, error) {
			if u == "https://example.com/broken" {
				return "", siteindex.Errorf(siteindex.EINVALID, "unexpected status 404 for %s", u)
			}
			return "<html></html>", nil
		},
	}

	c := s.crawler("https://example.com/")
	c.Fetcher = fetcher
	outcomes := collect(t, c)

	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].Skipped())
	assert.True(t, outcomes[1].Skipped())
	assert.Contains(t, outcomes[1].SkipReason, "404")
	assert.False(t, outcomes[2].Skipped())
	assert.Equal(t, "https://example.com/ok", outcomes[2].URL)
}

func TestCrawler_retries_transport_errors(t *testing.T) {
	t.Parallel()

	attempts := 0
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("connection reset")
			}
			return "<html></html>", nil
		},
	}
	s := &site{links: map[string][]string{}}
	c := s.crawler("https://example.com/")
	c.Fetcher = fetcher
	c.RetryDelays = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

	outcomes := collect(t, c)

	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Skipped())
	assert.Equal(t, 3, attempts)
}

func TestCrawler_does_not_retry_invalid_responses(t *testing.T) {
	t.Parallel()

	attempts := 0
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, u string) (string, error) {
			attempts++
			return "", siteindex.Errorf(siteindex.EINVALID, "unexpected content type for %s", u)
		},
	}
	s := &site{links: map[string][]string{}}
	c := s.crawler("https://example.com/")
	c.Fetcher = fetcher
	c.RetryDelays = []time.Duration{time.Millisecond, time.Millisecond}

	outcomes := collect(t, c)

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Skipped())
	assert.Equal(t, 1, attempts)
}

func TestCrawler_seeds_frontier_from_sitemap(t *testing.T) {
	t.Parallel()

	s := &site{links: map[string][]string{}}
	c := s.crawler("https://example.com/")
	c.Sitemaps = &mock.SitemapDiscoverer{
		DiscoverURLsFn: func(_ context.Context, _ string) ([]string, error) {
			return []string{"https://example.com/orphan"}, nil
		},
	}

	outcomes := collect(t, c)

	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/orphan",
	}, pageURLs(outcomes))
}

func TestCrawler_ignores_sitemap_discovery_failure(t *testing.T) {
	t.Parallel()

	s := &site{links: map[string][]string{}}
	c := s.crawler("https://example.com/")
	c.Sitemaps = &mock.SitemapDiscoverer{
		DiscoverURLsFn: func(_ context.Context, _ string) ([]string, error) {
			return nil, errors.New("robots.txt unreachable")
		},
	}

	outcomes := collect(t, c)
	assert.Equal(t, []string{"https://example.com/"}, pageURLs(outcomes))
}

func TestCrawler_rejects_invalid_base_URL(t *testing.T) {
	t.Parallel()

	c := &crawl.Crawler{BaseURL: "not a url"}
	err := c.Pages(context.Background(), func(siteindex.FetchOutcome) {})
	require.Error(t, err)
	assert.Equal(t, siteindex.EINVALID, siteindex.ErrorCode(err))
}
