package main

import (
	"encoding/json"
	"fmt"

	"github.com/apotheon-labs/siteindex"
	"github.com/apotheon-labs/siteindex/crawl"
	"github.com/apotheon-labs/siteindex/fs"
	"github.com/apotheon-labs/siteindex/index"
)

// Run executes the reindex command.
func (c *ReindexCmd) Run(deps *Dependencies) error {
	source, err := c.source(deps)
	if err != nil {
		return err
	}

	indexer := &index.Indexer{
		Source:   source,
		Embedder: deps.Embedder,
		Vectors:  deps.Vectors,
		Meta:     deps.Meta,
		Logger:   deps.Logger,
	}

	stats, err := indexer.Reindex(deps.Ctx, index.Options{
		MaxChars: c.ChunkChars,
		Overlap:  c.ChunkOverlap,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siteindex.ErrorMessage(err))
		return err
	}

	return json.NewEncoder(deps.Stdout).Encode(stats)
}

// source selects crawl or directory mode from the command's flags.
func (c *ReindexCmd) source(deps *Dependencies) (siteindex.PageSource, error) {
	if c.Dir != "" {
		return &fs.DirSource{
			Dir:        c.Dir,
			MaxFiles:   c.MaxFiles,
			Normalizer: newNormalizer(),
		}, nil
	}
	if c.URL == "" {
		return nil, fmt.Errorf("either a base URL or --dir is required")
	}
	return &crawl.Crawler{
		BaseURL:     c.URL,
		MaxPages:    c.MaxPages,
		MaxDepth:    c.MaxDepth,
		Fetcher:     newFetcher(deps.Logger),
		Normalizer:  newNormalizer(),
		Links:       newLinkExtractor(),
		Sitemaps:    newSitemapDiscoverer(),
		RateLimiter: crawl.NewDomainLimiter(c.RPS),
	}, nil
}
