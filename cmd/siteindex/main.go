package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"github.com/apotheon-labs/siteindex"
	"github.com/apotheon-labs/siteindex/chromem"
	"github.com/apotheon-labs/siteindex/gemini"
	"github.com/apotheon-labs/siteindex/goquery"
	sihttp "github.com/apotheon-labs/siteindex/http"
	"github.com/apotheon-labs/siteindex/ollama"
	sislog "github.com/apotheon-labs/siteindex/slog"
	"github.com/apotheon-labs/siteindex/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Data directory holding the vector index. Set before calling Run().
	DataDir string

	// Metadata snapshot path. Set before calling Run().
	DBPath string

	// Store backs the metadata service. Exposed for end-to-end tests.
	Store *sqlite.Store
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	dataDir := defaultDataDir()
	return &Main{
		DataDir: dataDir,
		DBPath:  defaultDBPath(dataDir),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Store != nil {
		return m.Store.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("siteindex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'siteindex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	if err := os.MkdirAll(m.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", m.DataDir, err)
	}

	m.Store, err = sqlite.OpenStore(ctx, m.DBPath, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITEINDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open metadata store at %q: %w", m.DBPath, err)
	}
	defer m.Close()
	deps.Meta = m.Store

	vectors, err := chromem.NewIndex(filepath.Join(m.DataDir, "vectors"), false)
	if err != nil {
		return fmt.Errorf("failed to open vector index: %w", err)
	}
	deps.Vectors = vectors

	if needsEmbedder(kongCtx.Command()) {
		deps.Embedder, err = buildEmbedder(ctx, cli.Embedder, logger)
		if err != nil {
			return err
		}
	}

	deps.Search = &siteindex.Searcher{
		Embedder: deps.Embedder,
		Vectors:  deps.Vectors,
		Meta:     deps.Meta,
	}

	return kongCtx.Run(deps)
}

// needsEmbedder reports whether the parsed command touches the embedding
// backend. The command string comes from kong after flag parsing, so global
// flags placed before the subcommand don't affect it.
func needsEmbedder(command string) bool {
	name, _, _ := strings.Cut(command, " ")
	switch name {
	case "reindex", "search", "recommend":
		return true
	}
	return false
}

// buildEmbedder wires the embedding chain: the native Ollama API first,
// then the OpenAI-compatible endpoint. Selecting gemini replaces the chain
// with the Gemini backend.
func buildEmbedder(ctx context.Context, backend string, logger *slog.Logger) (siteindex.Embedder, error) {
	if backend == "gemini" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return sislog.NewLoggingEmbedder(gemini.NewEmbedder(client, ""), "gemini", logger), nil
	}

	host := os.Getenv("OLLAMA_HOST")
	native, err := ollama.NewEmbedder(host, "")
	if err != nil {
		return nil, err
	}
	return siteindex.Chain{
		sislog.NewLoggingEmbedder(native, "ollama", logger),
		sislog.NewLoggingEmbedder(ollama.NewOpenAIEmbedder(host, ""), "openai-compatible", logger),
	}, nil
}

// newNormalizer and newLinkExtractor keep command wiring in one place.
func newNormalizer() siteindex.Normalizer       { return goquery.NewNormalizer() }
func newLinkExtractor() siteindex.LinkExtractor { return goquery.NewLinkExtractor() }
func newFetcher(logger *slog.Logger) siteindex.Fetcher {
	return sislog.NewLoggingFetcher(sihttp.NewFetcher(), logger)
}
func newSitemapDiscoverer() siteindex.SitemapDiscoverer {
	return sihttp.NewSitemapDiscoverer(nil)
}

func defaultDataDir() string {
	if dir := os.Getenv("SITEINDEX_DATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".siteindex"
	}
	return filepath.Join(home, ".siteindex")
}

func defaultDBPath(dataDir string) string {
	if path := os.Getenv("SITEINDEX_DB"); path != "" {
		return path
	}
	return filepath.Join(dataDir, "siteindex.db")
}
