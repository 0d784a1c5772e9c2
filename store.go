package siteindex

import "context"

// MetadataStore is a durable mapping of slug to PageDoc and slug to
// SitemapEntry, loaded fully at startup and held in memory thereafter.
// The reindex pipeline is the only writer; search and recommendation reads
// tolerate staleness against an in-progress reindex but never observe a
// partially-written slug.
type MetadataStore interface {
	// UpsertPage writes both records for one slug atomically in memory.
	// Durability requires a subsequent Save.
	UpsertPage(doc PageDoc, entry SitemapEntry)

	// PageBySlug returns the stored content record for a slug.
	// Returns ENOTFOUND if the slug has never been indexed.
	PageBySlug(slug string) (PageDoc, error)

	// ListSitemap returns all sitemap entries sorted by slug ascending.
	ListSitemap() []SitemapEntry

	// Save checkpoints the full in-memory state to durable storage,
	// replacing any previous snapshot.
	Save(ctx context.Context) error
}
