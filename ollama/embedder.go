// Package ollama implements embedding backends for a local Ollama server.
// Embedder speaks the native embeddings API; OpenAIEmbedder speaks the
// OpenAI-compatible endpoint that newer servers and proxies expose.
package ollama

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/apotheon-labs/siteindex"
)

// Defaults for a local Ollama server.
const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "nomic-embed-text"
)

// Ensure Embedder implements siteindex.Embedder.
var _ siteindex.Embedder = (*Embedder)(nil)

// Embedder generates embeddings through the native Ollama API
// (POST /api/embeddings with a model and prompt).
type Embedder struct {
	client *api.Client
	model  string
}

// NewEmbedder creates an Embedder talking to the Ollama server at host.
// Empty host or model fall back to the local defaults.
func NewEmbedder(host string, model string) (*Embedder, error) {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINVALID, "invalid ollama host %q: %v", host, err)
	}
	return &Embedder{
		client: api.NewClient(u, http.DefaultClient),
		model:  model,
	}, nil
}

// Embed implements siteindex.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE, "ollama embeddings: %v", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE, "ollama returned an empty embedding for model %q", e.model)
	}

	out := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}
