// Package mock provides function-field mock implementations of siteindex
// interfaces for testing.
package mock

import (
	"context"
	"net/url"

	"github.com/apotheon-labs/siteindex"
)

var _ siteindex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of siteindex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

var _ siteindex.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of siteindex.Normalizer.
type Normalizer struct {
	NormalizeFn func(raw string, sourceURL string) (*siteindex.Page, error)
}

func (n *Normalizer) Normalize(raw string, sourceURL string) (*siteindex.Page, error) {
	return n.NormalizeFn(raw, sourceURL)
}

var _ siteindex.PageSource = (*PageSource)(nil)

// PageSource is a mock implementation of siteindex.PageSource.
type PageSource struct {
	PagesFn func(ctx context.Context, emit func(siteindex.FetchOutcome)) error
}

func (s *PageSource) Pages(ctx context.Context, emit func(siteindex.FetchOutcome)) error {
	return s.PagesFn(ctx, emit)
}

var _ siteindex.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of siteindex.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

var _ siteindex.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of siteindex.VectorIndex.
type VectorIndex struct {
	UpsertFn         func(ctx context.Context, records []siteindex.VectorRecord) error
	DeleteByPrefixFn func(ctx context.Context, prefix string) error
	QueryFn          func(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]siteindex.Match, error)
}

func (v *VectorIndex) Upsert(ctx context.Context, records []siteindex.VectorRecord) error {
	return v.UpsertFn(ctx, records)
}

func (v *VectorIndex) DeleteByPrefix(ctx context.Context, prefix string) error {
	return v.DeleteByPrefixFn(ctx, prefix)
}

func (v *VectorIndex) Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]siteindex.Match, error) {
	return v.QueryFn(ctx, embedding, topK, filter)
}

var _ siteindex.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is a mock implementation of siteindex.MetadataStore.
type MetadataStore struct {
	UpsertPageFn  func(doc siteindex.PageDoc, entry siteindex.SitemapEntry)
	PageBySlugFn  func(slug string) (siteindex.PageDoc, error)
	ListSitemapFn func() []siteindex.SitemapEntry
	SaveFn        func(ctx context.Context) error
}

func (m *MetadataStore) UpsertPage(doc siteindex.PageDoc, entry siteindex.SitemapEntry) {
	m.UpsertPageFn(doc, entry)
}

func (m *MetadataStore) PageBySlug(slug string) (siteindex.PageDoc, error) {
	return m.PageBySlugFn(slug)
}

func (m *MetadataStore) ListSitemap() []siteindex.SitemapEntry {
	return m.ListSitemapFn()
}

func (m *MetadataStore) Save(ctx context.Context) error {
	return m.SaveFn(ctx)
}

var _ siteindex.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of siteindex.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, limit int, filter map[string]string) ([]siteindex.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, query string, limit int, filter map[string]string) ([]siteindex.SearchResult, error) {
	return s.SearchFn(ctx, query, limit, filter)
}

var _ siteindex.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of siteindex.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, pageURL string, origin *url.URL) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string, pageURL string, origin *url.URL) ([]string, error) {
	return e.ExtractLinksFn(html, pageURL, origin)
}

var _ siteindex.SitemapDiscoverer = (*SitemapDiscoverer)(nil)

// SitemapDiscoverer is a mock implementation of siteindex.SitemapDiscoverer.
type SitemapDiscoverer struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapDiscoverer) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}
