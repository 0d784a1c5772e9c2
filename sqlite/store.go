package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apotheon-labs/siteindex"
)

// Compile-time interface verification.
var _ siteindex.MetadataStore = (*Store)(nil)

// Store implements siteindex.MetadataStore. The full slug->PageDoc and
// slug->SitemapEntry state lives in memory; SQLite holds the durable
// snapshot, read once at open and rewritten wholesale on Save.
type Store struct {
	mu      sync.RWMutex
	pages   map[string]siteindex.PageDoc
	sitemap map[string]siteindex.SitemapEntry

	db     *DB
	logger *slog.Logger
}

// OpenStore opens the snapshot database at path and loads it fully into
// memory. A snapshot that cannot be opened or read is moved aside to
// "<path>.corrupt" and the store starts empty; indexed content is
// recoverable by reindexing, so recovery is loud but non-destructive.
func OpenStore(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		pages:   make(map[string]siteindex.PageDoc),
		sitemap: make(map[string]siteindex.SitemapEntry),
		logger:  logger,
	}

	db := NewDB(path)
	err := db.Open()
	if err == nil {
		err = s.load(ctx, db)
	}
	if err != nil {
		if path == ":memory:" {
			return nil, siteindex.Errorf(siteindex.EINTERNAL, "open metadata store: %v", err)
		}
		db.Close()
		corrupt := path + ".corrupt"
		if renameErr := os.Rename(path, corrupt); renameErr != nil {
			return nil, siteindex.Errorf(siteindex.EINTERNAL,
				"metadata snapshot at %s is unreadable and could not be moved aside: %v", path, renameErr)
		}
		logger.Warn("metadata snapshot unreadable, starting empty",
			"path", path, "moved_to", corrupt, "error", err)

		db = NewDB(path)
		if err := db.Open(); err != nil {
			return nil, siteindex.Errorf(siteindex.EINTERNAL, "open metadata store: %v", err)
		}
		s.pages = make(map[string]siteindex.PageDoc)
		s.sitemap = make(map[string]siteindex.SitemapEntry)
	}

	s.db = db
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// load reads both tables fully into the in-memory maps.
func (s *Store) load(ctx context.Context, db *DB) error {
	rows, err := db.QueryContext(ctx, `
		SELECT slug, url, title, description, headings, content, content_hash, indexed_at
		FROM pages
	`)
	if err != nil {
		return fmt.Errorf("read pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc siteindex.PageDoc
		var headings, indexedAt string
		if err := rows.Scan(&doc.Slug, &doc.URL, &doc.Title, &doc.Description,
			&headings, &doc.Content, &doc.ContentHash, &indexedAt); err != nil {
			return fmt.Errorf("scan page: %w", err)
		}
		doc.Headings = splitHeadings(headings)
		doc.IndexedAt, err = parseRFC3339(indexedAt, "indexed_at")
		if err != nil {
			return err
		}
		s.pages[doc.Slug] = doc
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read pages: %w", err)
	}

	entries, err := db.QueryContext(ctx, `
		SELECT slug, url, title, description, last_indexed_at
		FROM sitemap
	`)
	if err != nil {
		return fmt.Errorf("read sitemap: %w", err)
	}
	defer entries.Close()

	for entries.Next() {
		var entry siteindex.SitemapEntry
		var lastIndexedAt string
		if err := entries.Scan(&entry.Slug, &entry.URL, &entry.Title,
			&entry.Description, &lastIndexedAt); err != nil {
			return fmt.Errorf("scan sitemap entry: %w", err)
		}
		entry.LastIndexedAt, err = parseRFC3339(lastIndexedAt, "last_indexed_at")
		if err != nil {
			return err
		}
		s.sitemap[entry.Slug] = entry
	}
	return entries.Err()
}

// UpsertPage writes both records for one slug atomically in memory.
func (s *Store) UpsertPage(doc siteindex.PageDoc, entry siteindex.SitemapEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[doc.Slug] = doc
	s.sitemap[entry.Slug] = entry
}

// PageBySlug returns the stored content record for a slug.
func (s *Store) PageBySlug(slug string) (siteindex.PageDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.pages[slug]
	if !ok {
		return siteindex.PageDoc{}, siteindex.Errorf(siteindex.ENOTFOUND, "page %q not found", slug)
	}
	return doc, nil
}

// ListSitemap returns all sitemap entries sorted by slug ascending.
func (s *Store) ListSitemap() []siteindex.SitemapEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]siteindex.SitemapEntry, 0, len(s.sitemap))
	for _, entry := range s.sitemap {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return entries
}

// Save rewrites both tables from the in-memory state inside one
// transaction, replacing the previous snapshot in full.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return siteindex.Errorf(siteindex.EINTERNAL, "begin snapshot: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages"); err != nil {
		return siteindex.Errorf(siteindex.EINTERNAL, "clear pages: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sitemap"); err != nil {
		return siteindex.Errorf(siteindex.EINTERNAL, "clear sitemap: %v", err)
	}

	for _, doc := range s.pages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pages (slug, url, title, description, headings, content, content_hash, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.Slug, doc.URL, doc.Title, doc.Description, joinHeadings(doc.Headings),
			doc.Content, doc.ContentHash, doc.IndexedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return siteindex.Errorf(siteindex.EINTERNAL, "write page %s: %v", doc.Slug, err)
		}
	}
	for _, entry := range s.sitemap {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sitemap (slug, url, title, description, last_indexed_at)
			VALUES (?, ?, ?, ?, ?)
		`, entry.Slug, entry.URL, entry.Title, entry.Description,
			entry.LastIndexedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return siteindex.Errorf(siteindex.EINTERNAL, "write sitemap entry %s: %v", entry.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return siteindex.Errorf(siteindex.EINTERNAL, "commit snapshot: %v", err)
	}

	s.logger.Debug("metadata snapshot saved",
		"pages", len(s.pages), "sitemap_entries", len(s.sitemap))
	return nil
}

// Headings never contain newlines (whitespace is collapsed during
// normalization), so a newline join is a safe encoding.
func joinHeadings(headings []string) string {
	return strings.Join(headings, "\n")
}

func splitHeadings(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Split(encoded, "\n")
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
