package siteindex

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Search tuning parameters.
const (
	// maxVectorResults caps how many chunks are pulled from the vector
	// index regardless of the requested limit.
	maxVectorResults = 50

	// snippetChars is the approximate size of result snippets.
	snippetChars = 220

	// keywordBaseScore and keywordHitScore produce the low-confidence
	// scores for keyword-boosted results: 0.15 + 0.05 per hit.
	keywordBaseScore = 0.15
	keywordHitScore  = 0.05

	// DefaultSearchLimit is used when a caller passes a non-positive limit.
	DefaultSearchLimit = 10
)

// MetadataHeadingsKey is the vector-record metadata key under which the
// pipeline stores a page's leading headings, newline-separated.
const MetadataHeadingsKey = "headings"

// SearchResult is one ranked hit of a hybrid search.
type SearchResult struct {
	Slug            string   `json:"slug"`
	URL             string   `json:"url"`
	Title           string   `json:"title,omitempty"`
	Score           float64  `json:"score"`
	Snippet         string   `json:"snippet,omitempty"`
	MatchedHeadings []string `json:"matchedHeadings"`
}

// SearchService answers similarity/keyword queries against the index.
type SearchService interface {
	Search(ctx context.Context, query string, limit int, filter map[string]string) ([]SearchResult, error)
}

// Searcher combines vector-index similarity results with a keyword-boost
// pass over the sitemap to answer search queries. It reads the index and
// never mutates shared state, so concurrent searches need no coordination.
type Searcher struct {
	Embedder Embedder
	Vectors  VectorIndex
	Meta     MetadataStore
}

var _ SearchService = (*Searcher)(nil)

// Search returns at most limit results ranked by score descending.
// Vector matches score 1/(1+distance); sitemap entries whose title and
// description cover enough of the query words are appended as
// low-confidence keyword results for slugs the vector pass missed.
// An empty index degrades to empty results rather than failing.
func (s *Searcher) Search(ctx context.Context, query string, limit int, filter map[string]string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Errorf(EINVALID, "search query required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	topK := limit
	if topK > maxVectorResults {
		topK = maxVectorResults
	}
	matches, err := s.Vectors.Query(ctx, embedding, topK, filter)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		slug := m.Metadata["slug"]
		results = append(results, SearchResult{
			Slug:            slug,
			URL:             m.Metadata["url"],
			Title:           m.Metadata["title"],
			Score:           1 / (1 + m.Distance),
			Snippet:         Snippet(m.Document, query),
			MatchedHeadings: matchedHeadings(m.Metadata[MetadataHeadingsKey], query),
		})
		if slug != "" {
			seen[slug] = true
		}
	}

	results = append(results, s.keywordBoost(query, seen)...)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// keywordBoost surfaces sitemap entries whose title and description cover at
// least half of the query words (minimum one), skipping slugs the vector
// pass already returned.
func (s *Searcher) keywordBoost(query string, seen map[string]bool) []SearchResult {
	words := QueryWords(query)
	if len(words) == 0 {
		return nil
	}
	threshold := len(words) / 2
	if threshold < 1 {
		threshold = 1
	}

	var boosted []SearchResult
	for _, entry := range s.Meta.ListSitemap() {
		if seen[entry.Slug] {
			continue
		}
		haystack := strings.ToLower(entry.Title + " " + entry.Description)
		hits := 0
		for _, w := range words {
			if strings.Contains(haystack, w) {
				hits++
			}
		}
		if hits < threshold {
			continue
		}
		boosted = append(boosted, SearchResult{
			Slug:            entry.Slug,
			URL:             entry.URL,
			Title:           entry.Title,
			Score:           keywordBaseScore + keywordHitScore*float64(hits),
			MatchedHeadings: []string{},
		})
	}
	return boosted
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// QueryWords tokenizes a query into lowercase words of length >= 3.
func QueryWords(query string) []string {
	all := wordRe.FindAllString(strings.ToLower(query), -1)
	words := all[:0]
	for _, w := range all {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

// Snippet extracts a window of roughly snippetChars characters from text,
// centered on the first case-insensitive occurrence of query. When the query
// does not occur, the leading window is returned. Ellipsis markers flag
// truncation on either side.
func Snippet(text, query string) string {
	runes := []rune(text)
	if len(runes) <= snippetChars {
		return text
	}

	start := 0
	if idx := strings.Index(strings.ToLower(text), strings.ToLower(query)); idx >= 0 {
		// Index is in bytes; convert to a rune offset before centering.
		runeIdx := len([]rune(text[:idx]))
		start = runeIdx - (snippetChars-len([]rune(query)))/2
		if start < 0 {
			start = 0
		}
	}
	end := start + snippetChars
	if end > len(runes) {
		end = len(runes)
		start = end - snippetChars
		if start < 0 {
			start = 0
		}
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

// matchedHeadings returns the stored headings that contain any query word.
func matchedHeadings(stored, query string) []string {
	matched := []string{}
	if stored == "" {
		return matched
	}
	words := QueryWords(query)
	for _, h := range strings.Split(stored, "\n") {
		lower := strings.ToLower(h)
		for _, w := range words {
			if strings.Contains(lower, w) {
				matched = append(matched, h)
				break
			}
		}
	}
	return matched
}
