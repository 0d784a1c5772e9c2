package siteindex

import (
	"fmt"
	"strings"
)

// Default chunking parameters.
const (
	DefaultChunkChars   = 1200
	DefaultChunkOverlap = 200
)

// Chunk is a bounded-length window of a page's body text, the unit that gets
// embedded and indexed. Chunks exist only for the duration of one reindex
// pass.
type Chunk struct {
	Text  string
	Index int
}

// ChunkID returns the vector-index primary key for a chunk. All chunk ids
// for a slug share the SlugPrefix of that slug, which is what makes
// slug-scoped deletion possible.
func ChunkID(slug string, index int) string {
	return fmt.Sprintf("%s::chunk::%d", slug, index)
}

// SlugPrefix returns the id prefix shared by every chunk of a slug.
func SlugPrefix(slug string) string {
	return slug + "::"
}

// CleanText drops blank lines from text and rejoins the remainder with
// single newlines. This is the form chunk windows are computed over.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ChunkText splits text into overlapping windows of at most maxChars
// characters. Consecutive windows overlap by exactly overlap characters
// except possibly the final one, and together they cover the cleaned text
// with no gaps. Empty cleaned text produces no chunks.
//
// Overlap must be smaller than maxChars; the window start still advances by
// at least one character per step, so malformed parameters cannot loop
// forever.
func ChunkText(text string, maxChars, overlap int) ([]Chunk, error) {
	if maxChars <= 0 {
		return nil, Errorf(EINVALID, "chunk size must be positive, got %d", maxChars)
	}
	if overlap < 0 || overlap >= maxChars {
		return nil, Errorf(EINVALID, "chunk overlap must be in [0, %d), got %d", maxChars, overlap)
	}

	clean := []rune(CleanText(text))
	if len(clean) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	n := len(clean)
	start := 0
	for {
		end := start + maxChars
		if end > n {
			end = n
		}
		chunks = append(chunks, Chunk{
			Text:  string(clean[start:end]),
			Index: len(chunks),
		})
		if end == n {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks, nil
}
