package siteindex

import "context"

// VectorRecord is one embedded chunk as stored in the vector index.
type VectorRecord struct {
	// ID is the chunk id, "{slug}::chunk::{index}".
	ID string

	// Embedding is the chunk's vector. Dimensionality is fixed per
	// embedding model and must be consistent within an index.
	Embedding []float32

	// Document is the chunk's text.
	Document string

	// Metadata carries slug, url, title, description, leading headings,
	// and chunk index as exact-match filterable strings.
	Metadata map[string]string
}

// Match is one vector query result. Distance is non-negative and smaller
// means more similar; the retrieval engine converts it to a bounded score
// via 1/(1+distance).
type Match struct {
	ID       string
	Distance float64
	Document string
	Metadata map[string]string
}

// VectorIndex is a persistent nearest-neighbor store keyed by chunk id.
//
// The invariant the pipeline maintains: for a given slug, the records
// present are exactly the set produced by the most recent successful reindex
// of that slug. DeleteByPrefix before Upsert is what enforces it.
type VectorIndex interface {
	// Upsert writes or overwrites one record per element.
	Upsert(ctx context.Context, records []VectorRecord) error

	// DeleteByPrefix removes every record whose id starts with prefix.
	// Prefixes are always SlugPrefix values.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Query returns up to topK records ranked by ascending distance to
	// embedding. A non-nil filter restricts results to records whose
	// metadata matches every key exactly; only scalar equality is
	// supported.
	Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]Match, error)
}
