// Package index implements the reindex pipeline: it drains a page source,
// chunks and embeds each page, and writes the results through the vector
// index and metadata store.
package index

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/apotheon-labs/siteindex"
)

// embedConcurrency bounds how many of one page's chunks embed in parallel.
const embedConcurrency = 4

// metadataHeadingsMax caps how many headings are copied into vector-record
// metadata; search only needs the leading ones.
const metadataHeadingsMax = 10

// Options tunes one reindex pass.
type Options struct {
	MaxChars int
	Overlap  int
}

// Stats summarizes one reindex pass.
type Stats struct {
	Pages     int `json:"pages"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped"`
	Unchanged int `json:"unchanged"`
}

// Indexer orchestrates a full reindex. It is the sole writer to the vector
// index and metadata store while a pass runs; each page's old vectors are
// deleted and its new state written before the next page starts, so readers
// never observe a partially-written slug.
type Indexer struct {
	Source   siteindex.PageSource
	Embedder siteindex.Embedder
	Vectors  siteindex.VectorIndex
	Meta     siteindex.MetadataStore
	Logger   *slog.Logger
}

// Reindex drains the source and rebuilds the index. Skipped pages are
// logged and counted but never fatal; an embedding failure aborts the whole
// pass with the backend's error.
func (x *Indexer) Reindex(ctx context.Context, opts Options) (Stats, error) {
	if x.Source == nil {
		return Stats{}, siteindex.Errorf(siteindex.EINVALID, "no page source configured")
	}

	logger := x.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = siteindex.DefaultChunkChars
	}
	if opts.Overlap < 0 {
		opts.Overlap = siteindex.DefaultChunkOverlap
	}

	runID := uuid.New().String()
	begin := time.Now()
	logger.Info("reindex started", "run_id", runID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stats Stats
	var pageErr error
	err := x.Source.Pages(ctx, func(outcome siteindex.FetchOutcome) {
		if pageErr != nil {
			return
		}
		if outcome.Skipped() {
			stats.Skipped++
			logger.Info("page skipped", "run_id", runID, "url", outcome.URL, "reason", outcome.SkipReason)
			return
		}

		chunks, unchanged, err := x.indexPage(ctx, outcome.Page, opts, logger, runID)
		if err != nil {
			pageErr = err
			cancel()
			return
		}
		stats.Pages++
		stats.Chunks += chunks
		if unchanged {
			stats.Unchanged++
		}
	})
	if pageErr != nil {
		return stats, pageErr
	}
	if err != nil {
		return stats, err
	}

	if err := x.Meta.Save(ctx); err != nil {
		return stats, err
	}

	logger.Info("reindex finished",
		"run_id", runID,
		"pages", stats.Pages,
		"chunks", stats.Chunks,
		"skipped", stats.Skipped,
		"unchanged", stats.Unchanged,
		"duration", time.Since(begin),
	)
	return stats, nil
}

// indexPage writes one page through both stores and returns the number of
// chunks embedded. Unchanged pages (same content hash as the stored doc)
// keep their vectors and report unchanged instead of re-embedding.
func (x *Indexer) indexPage(ctx context.Context, page *siteindex.Page, opts Options, logger *slog.Logger, runID string) (chunks int, unchanged bool, err error) {
	content := siteindex.CleanText(page.BodyText)
	hash := hashContent(content)
	now := time.Now().UTC()

	if prev, err := x.Meta.PageBySlug(page.Slug); err == nil && prev.ContentHash == hash {
		logger.Debug("page unchanged", "run_id", runID, "slug", page.Slug)
		x.upsertMeta(page, content, hash, now)
		return 0, true, nil
	}

	if err := x.Vectors.DeleteByPrefix(ctx, siteindex.SlugPrefix(page.Slug)); err != nil {
		return 0, false, err
	}

	parts, err := siteindex.ChunkText(content, opts.MaxChars, opts.Overlap)
	if err != nil {
		return 0, false, err
	}

	records, err := x.embedChunks(ctx, page, parts)
	if err != nil {
		return 0, false, siteindex.Errorf(siteindex.ErrorCode(err),
			"embedding failed for %s: %s", page.Slug, siteindex.ErrorMessage(err))
	}
	if err := x.Vectors.Upsert(ctx, records); err != nil {
		return 0, false, err
	}

	x.upsertMeta(page, content, hash, now)
	logger.Debug("page indexed", "run_id", runID, "slug", page.Slug, "chunks", len(parts))
	return len(parts), false, nil
}

// embedChunks embeds one page's chunks with bounded concurrency. Writes are
// indexed so record order matches chunk order; the first failure cancels
// the rest.
func (x *Indexer) embedChunks(ctx context.Context, page *siteindex.Page, chunks []siteindex.Chunk) ([]siteindex.VectorRecord, error) {
	records := make([]siteindex.VectorRecord, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := x.Embedder.Embed(ctx, chunk.Text)
			if err != nil {
				return err
			}
			records[i] = siteindex.VectorRecord{
				ID:        siteindex.ChunkID(page.Slug, chunk.Index),
				Embedding: embedding,
				Document:  chunk.Text,
				Metadata:  recordMetadata(page, chunk.Index),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func recordMetadata(page *siteindex.Page, chunkIndex int) map[string]string {
	headings := page.Headings
	if len(headings) > metadataHeadingsMax {
		headings = headings[:metadataHeadingsMax]
	}
	return map[string]string{
		"slug":                        page.Slug,
		"url":                         page.URL,
		"title":                       page.Title,
		"description":                 page.Description,
		siteindex.MetadataHeadingsKey: strings.Join(headings, "\n"),
		"chunk":                       strconv.Itoa(chunkIndex),
	}
}

func (x *Indexer) upsertMeta(page *siteindex.Page, content, hash string, now time.Time) {
	x.Meta.UpsertPage(
		siteindex.PageDoc{
			Slug:        page.Slug,
			URL:         page.URL,
			Title:       page.Title,
			Description: page.Description,
			Headings:    page.Headings,
			Content:     content,
			ContentHash: hash,
			IndexedAt:   now,
		},
		siteindex.SitemapEntry{
			Slug:          page.Slug,
			URL:           page.URL,
			Title:         page.Title,
			Description:   page.Description,
			LastIndexedAt: now,
		},
	)
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
