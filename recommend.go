package siteindex

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Recommendation heuristics parameters.
const (
	// maxRecommendations caps one recommendation pass.
	maxRecommendations = 80

	// thinPageWords is the word count below which a page counts as thin.
	thinPageWords = 250

	// linkingMaxPages bounds the pairwise internal-linking scan.
	linkingMaxPages = 40

	// linkingMinShared is the minimum title-token overlap for a pair.
	linkingMinShared = 2

	// linkingMaxTerms caps the shared terms reported per pair.
	linkingMaxTerms = 6

	// slugSuggestionMaxChars bounds goal-derived slug suggestions.
	slugSuggestionMaxChars = 60
)

// RecommendationType is the closed set of recommendation kinds.
type RecommendationType string

// Recommendation kinds.
const (
	RecommendNewPage         RecommendationType = "new_page"
	RecommendExpandPage      RecommendationType = "expand_page"
	RecommendInternalLinking RecommendationType = "internal_linking"
	RecommendSEOMetadata     RecommendationType = "seo_metadata"
)

// ProposedMeta is suggested SEO metadata attached to a recommendation.
type ProposedMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// Recommendation is one actionable content suggestion.
type Recommendation struct {
	Type              RecommendationType `json:"type"`
	Title             string             `json:"title"`
	SlugSuggestion    string             `json:"slugSuggestion"`
	Rationale         string             `json:"rationale"`
	Outline           []string           `json:"outline"`
	SuggestedKeywords []string           `json:"suggestedKeywords"`
	ProposedMeta      ProposedMeta       `json:"proposedMeta"`
}

// RecommendOptions carries the optional audience and constraints hints that
// flavor recommendation rationales.
type RecommendOptions struct {
	Audience    string
	Constraints string
}

// newPageOutline is the fixed six-section outline for content-gap pages.
var newPageOutline = []string{
	"Introduction and problem statement",
	"Who this is for",
	"Core concepts and definitions",
	"Step-by-step walkthrough",
	"Common pitfalls and FAQs",
	"Summary and next steps",
}

// expandPageOutline is the fixed improvement outline for thin pages.
var expandPageOutline = []string{
	"Expand the introduction with context and intent",
	"Add concrete examples or use cases",
	"Add supporting data, visuals, or code samples",
	"Add internal links to related pages",
	"Close with a clear call to action",
}

// Recommender runs four independent heuristics over the metadata store:
// content-gap, thin-page, internal-linking, and missing-metadata. It only
// reads the index, so it tolerates an in-progress reindex.
type Recommender struct {
	Search SearchService
	Meta   MetadataStore
}

// Recommend concatenates the outputs of the four heuristics in a stable
// order, deduplicates by (type, slug suggestion, title) keeping first
// occurrence, and caps the result.
func (r *Recommender) Recommend(ctx context.Context, goals []string, opts RecommendOptions) ([]Recommendation, error) {
	var recs []Recommendation
	recs = append(recs, r.contentGaps(ctx, goals, opts)...)
	recs = append(recs, r.thinPages()...)
	recs = append(recs, r.internalLinking()...)
	recs = append(recs, r.missingMetadata()...)

	deduped := make([]Recommendation, 0, len(recs))
	type key struct {
		t     RecommendationType
		slug  string
		title string
	}
	seen := make(map[key]bool)
	for _, rec := range recs {
		k := key{rec.Type, rec.SlugSuggestion, rec.Title}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, rec)
		if len(deduped) == maxRecommendations {
			break
		}
	}
	return deduped, nil
}

// contentGaps emits a new_page recommendation for every goal the index has
// no matching content for. A failing search skips the goal rather than
// fabricating a gap.
func (r *Recommender) contentGaps(ctx context.Context, goals []string, opts RecommendOptions) []Recommendation {
	var recs []Recommendation
	for _, goal := range goals {
		goal = strings.TrimSpace(goal)
		if goal == "" {
			continue
		}
		results, err := r.Search.Search(ctx, goal, 3, nil)
		if err != nil || len(results) >= 1 {
			continue
		}

		words := goalWords(goal)
		rationale := fmt.Sprintf("No indexed content matches the goal %q.", goal)
		if opts.Audience != "" {
			rationale += fmt.Sprintf(" Target audience: %s.", opts.Audience)
		}
		if opts.Constraints != "" {
			rationale += fmt.Sprintf(" Constraints: %s.", opts.Constraints)
		}
		recs = append(recs, Recommendation{
			Type:              RecommendNewPage,
			Title:             fmt.Sprintf("Create a page for %q", goal),
			SlugSuggestion:    slugSuggestion(words),
			Rationale:         rationale,
			Outline:           newPageOutline,
			SuggestedKeywords: words,
			ProposedMeta: ProposedMeta{
				Title:       goal,
				Description: fmt.Sprintf("Everything you need to know about %s.", goal),
				Excerpt:     fmt.Sprintf("A practical guide to %s.", goal),
			},
		})
	}
	return recs
}

// thinPages emits an expand_page recommendation for every page whose content
// has fewer than thinPageWords whitespace-separated words.
func (r *Recommender) thinPages() []Recommendation {
	var recs []Recommendation
	for _, entry := range r.Meta.ListSitemap() {
		doc, err := r.Meta.PageBySlug(entry.Slug)
		if err != nil {
			continue
		}
		words := len(strings.Fields(doc.Content))
		if words >= thinPageWords {
			continue
		}
		name := entry.Title
		if name == "" {
			name = entry.Slug
		}
		recs = append(recs, Recommendation{
			Type:           RecommendExpandPage,
			Title:          fmt.Sprintf("Expand thin page %q", name),
			SlugSuggestion: entry.Slug,
			Rationale: fmt.Sprintf("Page %q has only %d words; pages under %d words rarely rank or satisfy intent.",
				entry.Slug, words, thinPageWords),
			Outline:           expandPageOutline,
			SuggestedKeywords: goalWords(entry.Title),
			ProposedMeta:      ProposedMeta{},
		})
	}
	return recs
}

// internalLinking scans the first linkingMaxPages titled sitemap entries
// pairwise and suggests cross-links for pairs whose titles share at least
// linkingMinShared significant words.
func (r *Recommender) internalLinking() []Recommendation {
	var titled []SitemapEntry
	for _, entry := range r.Meta.ListSitemap() {
		if entry.Title == "" {
			continue
		}
		titled = append(titled, entry)
		if len(titled) == linkingMaxPages {
			break
		}
	}

	var recs []Recommendation
	for i := 0; i < len(titled); i++ {
		for j := i + 1; j < len(titled); j++ {
			shared := sharedTitleTerms(titled[i].Title, titled[j].Title)
			if len(shared) < linkingMinShared {
				continue
			}
			if len(shared) > linkingMaxTerms {
				shared = shared[:linkingMaxTerms]
			}
			recs = append(recs, Recommendation{
				Type:           RecommendInternalLinking,
				Title:          fmt.Sprintf("Cross-link %s and %s", titled[i].Slug, titled[j].Slug),
				SlugSuggestion: titled[i].Slug,
				Rationale: fmt.Sprintf("Pages %q and %q both cover: %s. Linking them strengthens topical authority.",
					titled[i].Slug, titled[j].Slug, strings.Join(shared, ", ")),
				Outline:           []string{},
				SuggestedKeywords: shared,
				ProposedMeta:      ProposedMeta{},
			})
		}
	}
	return recs
}

// missingMetadata emits a seo_metadata recommendation for every sitemap
// entry without a description.
func (r *Recommender) missingMetadata() []Recommendation {
	var recs []Recommendation
	for _, entry := range r.Meta.ListSitemap() {
		if entry.Description != "" {
			continue
		}
		name := entry.Title
		if name == "" {
			name = entry.Slug
		}
		recs = append(recs, Recommendation{
			Type:           RecommendSEOMetadata,
			Title:          fmt.Sprintf("Add meta description for %q", name),
			SlugSuggestion: entry.Slug,
			Rationale: fmt.Sprintf("Page %q has no meta description; search engines will synthesize one from arbitrary body text.",
				entry.Slug),
			Outline:           []string{},
			SuggestedKeywords: goalWords(entry.Title),
			ProposedMeta: ProposedMeta{
				Title:       name,
				Description: fmt.Sprintf("Learn about %s: key concepts, practical guidance, and next steps.", name),
				Excerpt:     fmt.Sprintf("An overview of %s.", name),
			},
		})
	}
	return recs
}

// goalWords extracts lowercase alphanumeric words from a goal or title.
func goalWords(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

// slugSuggestion joins goal words with hyphens, capped at
// slugSuggestionMaxChars characters.
func slugSuggestion(words []string) string {
	slug := strings.Join(words, "-")
	if len(slug) > slugSuggestionMaxChars {
		slug = slug[:slugSuggestionMaxChars]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// sharedTitleTerms returns the sorted intersection of the two titles'
// significant words (length >= 5).
func sharedTitleTerms(a, b string) []string {
	setA := make(map[string]bool)
	for _, w := range goalWords(a) {
		if len(w) >= 5 {
			setA[w] = true
		}
	}
	var shared []string
	seen := make(map[string]bool)
	for _, w := range goalWords(b) {
		if len(w) >= 5 && setA[w] && !seen[w] {
			seen[w] = true
			shared = append(shared, w)
		}
	}
	sort.Strings(shared)
	return shared
}
