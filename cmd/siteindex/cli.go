package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/apotheon-labs/siteindex"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Meta     siteindex.MetadataStore
	Vectors  siteindex.VectorIndex
	Embedder siteindex.Embedder
	Search   siteindex.SearchService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose  bool   `short:"v" help:"Enable debug logging"`
	Embedder string `default:"ollama" enum:"ollama,gemini" help:"Embedding backend (ollama or gemini)"`

	Reindex   ReindexCmd   `cmd:"" help:"Crawl a site or walk a build directory and rebuild the index"`
	Search    SearchCmd    `cmd:"" help:"Search indexed content"`
	Recommend RecommendCmd `cmd:"" help:"Generate content recommendations"`
	Sitemap   SitemapCmd   `cmd:"" help:"List all indexed pages"`
	Page      PageCmd      `cmd:"" help:"Show the stored content record for one page"`
}

// ReindexCmd is the "reindex" subcommand.
type ReindexCmd struct {
	URL          string  `arg:"" optional:"" help:"Base URL to crawl"`
	Dir          string  `short:"d" help:"Index a local build-output directory instead of crawling"`
	MaxPages     int     `default:"50" help:"Maximum pages to index"`
	MaxDepth     int     `default:"3" help:"Maximum crawl depth from the base URL"`
	MaxFiles     int     `default:"500" help:"Maximum files to index in directory mode"`
	ChunkChars   int     `default:"1200" help:"Chunk size in characters"`
	ChunkOverlap int     `default:"200" help:"Chunk overlap in characters"`
	RPS          float64 `default:"2" help:"Fetch rate limit per domain (requests per second)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query  []string `arg:"" help:"Search query"`
	Limit  int      `short:"n" default:"10" help:"Maximum results"`
	Filter []string `short:"f" help:"Metadata filter as key=value (repeatable)"`
}

// RecommendCmd is the "recommend" subcommand.
type RecommendCmd struct {
	Goals       []string `arg:"" optional:"" help:"Site goals to cover"`
	Audience    string   `help:"Target audience"`
	Constraints string   `help:"Free-form constraints"`
}

// SitemapCmd is the "sitemap" subcommand.
type SitemapCmd struct{}

// PageCmd is the "page" subcommand.
type PageCmd struct {
	Slug string `arg:"" help:"Page slug"`
}
