// Package fs implements a page source over a local static build output
// directory, for indexing a site without crawling it.
package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/apotheon-labs/siteindex"
)

// DefaultMaxFiles caps the number of files one pass will consider.
const DefaultMaxFiles = 500

// Ensure DirSource implements siteindex.PageSource at compile time.
var _ siteindex.PageSource = (*DirSource)(nil)

// DirSource walks a directory tree recursively in lexicographic order and
// yields each HTML or Markdown file as a page. HTML files go through the
// Normalizer; Markdown files are taken as plain text with no markup
// stripping.
type DirSource struct {
	Dir        string
	MaxFiles   int
	Normalizer siteindex.Normalizer
}

// Pages implements siteindex.PageSource.
func (s *DirSource) Pages(ctx context.Context, emit func(siteindex.FetchOutcome)) error {
	info, err := os.Stat(s.Dir)
	if err != nil || !info.IsDir() {
		return siteindex.Errorf(siteindex.EINVALID, "not a directory: %s", s.Dir)
	}

	maxFiles := s.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	seen := 0
	return filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !indexableExt(ext) {
			return nil
		}
		if seen >= maxFiles {
			return fs.SkipAll
		}
		seen++

		rel, err := filepath.Rel(s.Dir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		raw, err := os.ReadFile(path)
		if err != nil {
			emit(siteindex.FetchOutcome{URL: rel, SkipReason: "unreadable file: " + err.Error()})
			return nil
		}

		page, err := s.pageFromFile(rel, ext, string(raw))
		if err != nil {
			emit(siteindex.FetchOutcome{URL: rel, SkipReason: siteindex.ErrorMessage(err)})
			return nil
		}
		emit(siteindex.FetchOutcome{URL: rel, Page: page})
		return nil
	})
}

func (s *DirSource) pageFromFile(rel string, ext string, raw string) (*siteindex.Page, error) {
	switch ext {
	case ".html", ".htm":
		// The extension-stripped relative path stands in for the page URL
		// so slugs match what a crawl of the deployed site would produce.
		return s.Normalizer.Normalize(raw, "/"+strings.TrimSuffix(rel, filepath.Ext(rel)))
	default:
		// Markdown: plain text, slug straight from the relative path.
		return &siteindex.Page{
			Slug:     slugFromPath(rel),
			URL:      rel,
			BodyText: raw,
		}, nil
	}
}

func indexableExt(ext string) bool {
	switch ext {
	case ".html", ".htm", ".md", ".markdown":
		return true
	}
	return false
}

// slugFromPath derives a slug from a relative file path, reusing the URL
// slug rules on the extension-stripped path.
func slugFromPath(rel string) string {
	trimmed := strings.TrimSuffix(rel, filepath.Ext(rel))
	return siteindex.SlugFromURL("/" + trimmed)
}
