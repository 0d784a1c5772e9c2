// Package gemini implements an embedding backend on the Google Gemini API.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/apotheon-labs/siteindex"
)

// DefaultModel is the Gemini embedding model used when none is configured.
const DefaultModel = "text-embedding-004"

// Ensure Embedder implements siteindex.Embedder at compile time.
var _ siteindex.Embedder = (*Embedder)(nil)

// Embedder implements siteindex.Embedder using Google Gemini.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder. An empty model selects DefaultModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	return &Embedder{client: client, model: model}
}

// Embed generates an embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, siteindex.Errorf(siteindex.EINVALID, "text required")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: text}},
		}},
		nil,
	)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE, "gemini embed content: %v", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE, "gemini returned an empty embedding for model %q", e.model)
	}

	return result.Embeddings[0].Values, nil
}
