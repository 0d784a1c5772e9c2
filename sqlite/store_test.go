package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apotheon-labs/siteindex"
	"github.com/apotheon-labs/siteindex/sqlite"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.OpenStore(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func doc(slug string) (siteindex.PageDoc, siteindex.SitemapEntry) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return siteindex.PageDoc{
			Slug:        slug,
			URL:         "https://example.com/" + slug,
			Title:       "Title of " + slug,
			Description: "About " + slug,
			Headings:    []string{"Intro", "Details"},
			Content:     "content of " + slug,
			ContentHash: "abc123",
			IndexedAt:   now,
		}, siteindex.SitemapEntry{
			Slug:          slug,
			URL:           "https://example.com/" + slug,
			Title:         "Title of " + slug,
			Description:   "About " + slug,
			LastIndexedAt: now,
		}
}

func TestStore_PageBySlug_returns_upserted_doc(t *testing.T) {
	t.Parallel()

	s := openStore(t, ":memory:")
	d, e := doc("about")
	s.UpsertPage(d, e)

	got, err := s.PageBySlug("about")
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestStore_PageBySlug_returns_ENOTFOUND_for_unknown_slug(t *testing.T) {
	t.Parallel()

	s := openStore(t, ":memory:")
	_, err := s.PageBySlug("ghost")
	require.Error(t, err)
	assert.Equal(t, siteindex.ENOTFOUND, siteindex.ErrorCode(err))
}

func TestStore_ListSitemap_sorts_by_slug(t *testing.T) {
	t.Parallel()

	s := openStore(t, ":memory:")
	for _, slug := range []string{"zebra", "about", "middle"} {
		d, e := doc(slug)
		s.UpsertPage(d, e)
	}

	entries := s.ListSitemap()
	require.Len(t, entries, 3)
	assert.Equal(t, "about", entries[0].Slug)
	assert.Equal(t, "middle", entries[1].Slug)
	assert.Equal(t, "zebra", entries[2].Slug)
}

func TestStore_UpsertPage_overwrites_existing_slug(t *testing.T) {
	t.Parallel()

	s := openStore(t, ":memory:")
	d, e := doc("about")
	s.UpsertPage(d, e)

	d.Content = "rewritten"
	s.UpsertPage(d, e)

	got, err := s.PageBySlug("about")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Content)
	assert.Len(t, s.ListSitemap(), 1)
}

func TestStore_Save_persists_state_across_reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "siteindex.db")
	ctx := context.Background()

	s := openStore(t, path)
	d, e := doc("about")
	s.UpsertPage(d, e)
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	got, err := reopened.PageBySlug("about")
	require.NoError(t, err)
	assert.Equal(t, d, got)

	entries := reopened.ListSitemap()
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestStore_Save_replaces_previous_snapshot_in_full(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "siteindex.db")
	ctx := context.Background()

	s := openStore(t, path)
	for _, slug := range []string{"a", "b", "c"} {
		d, e := doc(slug)
		s.UpsertPage(d, e)
	}
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Save(ctx)) // second checkpoint must not duplicate rows
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	assert.Len(t, reopened.ListSitemap(), 3)
}

func TestOpenStore_moves_unreadable_snapshot_aside_and_starts_empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "siteindex.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite database"), 0o644))

	s := openStore(t, path)
	assert.Empty(t, s.ListSitemap())

	_, err := os.Stat(path + ".corrupt")
	assert.NoError(t, err, "corrupt snapshot should be preserved as a sidecar")
}
