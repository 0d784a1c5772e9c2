// Package chromem implements the vector index on an embedded chromem-go
// collection persisted as gob files on disk.
package chromem

import (
	"context"
	"errors"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/apotheon-labs/siteindex"
)

// collectionName holds every chunk vector. One collection per index keeps
// the on-disk layout flat.
const collectionName = "chunks"

// slugMetadataKey is injected into every stored record so deletes can be
// scoped to a page without enumerating ids.
const slugMetadataKey = "slug"

// Ensure Index implements siteindex.VectorIndex at compile time.
var _ siteindex.VectorIndex = (*Index)(nil)

// Index implements siteindex.VectorIndex using chromem-go. Embeddings are
// always supplied by the caller; the collection never computes its own.
type Index struct {
	coll *chromem.Collection
}

// NewIndex opens (or creates) a persistent index rooted at path. When
// compress is true the gob files are gzip-compressed.
func NewIndex(path string, compress bool) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINTERNAL, "open vector index at %s: %v", path, err)
	}
	return newIndex(db)
}

// NewMemoryIndex creates a non-persistent index. Used in tests.
func NewMemoryIndex() (*Index, error) {
	return newIndex(chromem.NewDB())
}

func newIndex(db *chromem.DB) (*Index, error) {
	// chromem falls back to its OpenAI embedder when the function is nil,
	// so pass one that refuses: all embeddings arrive precomputed.
	coll, err := db.GetOrCreateCollection(collectionName, nil, rejectEmbedding)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINTERNAL, "open collection %s: %v", collectionName, err)
	}
	return &Index{coll: coll}, nil
}

func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

// slugFromID extracts the page slug from a "{slug}::chunk::{i}" id. Slugs
// never contain ":" so the first separator is unambiguous.
func slugFromID(id string) string {
	if i := strings.Index(id, "::"); i != -1 {
		return id[:i]
	}
	return id
}

// Upsert stores the records, replacing any with the same id. A "slug"
// metadata key derived from the id prefix is added to every record.
func (x *Index) Upsert(ctx context.Context, records []siteindex.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return siteindex.Errorf(siteindex.EINVALID, "vector record %d has no id", i)
		}
		if len(rec.Embedding) == 0 {
			return siteindex.Errorf(siteindex.EINVALID, "vector record %q has no embedding", rec.ID)
		}

		metadata := make(map[string]string, len(rec.Metadata)+1)
		for k, v := range rec.Metadata {
			metadata[k] = v
		}
		metadata[slugMetadataKey] = slugFromID(rec.ID)

		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Document,
			Embedding: rec.Embedding,
			Metadata:  metadata,
		}
	}

	if err := x.coll.AddDocuments(ctx, docs, 1); err != nil {
		return siteindex.Errorf(siteindex.EINTERNAL, "store %d vectors: %v", len(docs), err)
	}
	return nil
}

// DeleteByPrefix removes every record whose id starts with prefix. Ids are
// always "{slug}::chunk::{i}" and "slug" is stored as metadata, so the
// delete is an exact metadata match instead of an id scan.
func (x *Index) DeleteByPrefix(ctx context.Context, prefix string) error {
	slug := strings.TrimSuffix(prefix, "::")
	if slug == "" {
		return siteindex.Errorf(siteindex.EINVALID, "delete prefix required")
	}
	if x.coll.Count() == 0 {
		return nil
	}
	if err := x.coll.Delete(ctx, map[string]string{slugMetadataKey: slug}, nil); err != nil {
		return siteindex.Errorf(siteindex.EINTERNAL, "delete vectors for %s: %v", slug, err)
	}
	return nil
}

// Query returns the topK nearest records by cosine distance, optionally
// restricted to records whose metadata exactly matches filter.
func (x *Index) Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]siteindex.Match, error) {
	if len(embedding) == 0 {
		return nil, siteindex.Errorf(siteindex.EINVALID, "query embedding required")
	}
	if topK <= 0 {
		return nil, siteindex.Errorf(siteindex.EINVALID, "topK must be positive, got %d", topK)
	}

	// chromem requires topK <= document count.
	count := x.coll.Count()
	if count == 0 {
		return []siteindex.Match{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := x.coll.QueryEmbedding(ctx, embedding, topK, filter, nil)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINTERNAL, "query vectors: %v", err)
	}

	matches := make([]siteindex.Match, len(results))
	for i, r := range results {
		distance := float64(1 - r.Similarity)
		if distance < 0 {
			distance = 0
		}
		matches[i] = siteindex.Match{
			ID:       r.ID,
			Distance: distance,
			Document: r.Content,
			Metadata: r.Metadata,
		}
	}
	return matches, nil
}
