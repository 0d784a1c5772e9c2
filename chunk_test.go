package siteindex_test

import (
	"strings"
	"testing"

	"github.com/apotheon-labs/siteindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_windows_cover_text_with_exact_overlap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 2500)
	chunks, err := siteindex.ChunkText(text, 1200, 200)
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, 1200, len(chunks[0].Text))
	assert.Equal(t, 1200, len(chunks[1].Text))
	assert.Equal(t, 500, len(chunks[2].Text))
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkText_reconstructs_clean_text_accounting_for_overlap(t *testing.T) {
	t.Parallel()

	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("lorem ipsum dolor sit amet ", 60)
	const maxChars, overlap = 300, 50

	chunks, err := siteindex.ChunkText(text, maxChars, overlap)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var sb strings.Builder
	for i, c := range chunks {
		runes := []rune(c.Text)
		assert.LessOrEqual(t, len(runes), maxChars)
		if i == 0 {
			sb.WriteString(c.Text)
			continue
		}
		sb.WriteString(string(runes[overlap:]))
	}
	assert.Equal(t, siteindex.CleanText(text), sb.String())
}

func TestChunkText_returns_no_chunks_for_blank_text(t *testing.T) {
	t.Parallel()

	chunks, err := siteindex.ChunkText("\n\n   \n\t\n", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkText_short_text_yields_single_chunk(t *testing.T) {
	t.Parallel()

	chunks, err := siteindex.ChunkText("hello world", 100, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunkText_rejects_overlap_not_smaller_than_size(t *testing.T) {
	t.Parallel()

	_, err := siteindex.ChunkText("some text", 100, 100)
	require.Error(t, err)
	assert.Equal(t, siteindex.EINVALID, siteindex.ErrorCode(err))

	_, err = siteindex.ChunkText("some text", 0, 0)
	require.Error(t, err)
	assert.Equal(t, siteindex.EINVALID, siteindex.ErrorCode(err))
}

func TestChunkText_count_decreases_as_size_grows(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("x", 5000)
	prev := int(^uint(0) >> 1)
	for _, maxChars := range []int{500, 1000, 2000, 6000} {
		chunks, err := siteindex.ChunkText(text, maxChars, 100)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(chunks), prev)
		prev = len(chunks)
	}
}

func TestCleanText_drops_blank_lines(t *testing.T) {
	t.Parallel()

	got := siteindex.CleanText("first\n\n  \nsecond\n\nthird\n")
	assert.Equal(t, "first\nsecond\nthird", got)
}

func TestChunkID_shares_slug_prefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docs/intro::chunk::0", siteindex.ChunkID("docs/intro", 0))
	assert.Equal(t, "docs/intro::chunk::7", siteindex.ChunkID("docs/intro", 7))
	assert.True(t, strings.HasPrefix(siteindex.ChunkID("docs/intro", 3), siteindex.SlugPrefix("docs/intro")))
}
