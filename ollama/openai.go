package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apotheon-labs/siteindex"
)

// DefaultOpenAITimeout bounds a single OpenAI-compatible embeddings call.
const DefaultOpenAITimeout = 30 * time.Second

// Ensure OpenAIEmbedder implements siteindex.Embedder.
var _ siteindex.Embedder = (*OpenAIEmbedder)(nil)

// OpenAIEmbedder generates embeddings through the OpenAI-compatible
// endpoint (POST /v1/embeddings with a model and input). It exists as a
// fallback for servers that reject or lack the native embeddings API.
type OpenAIEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithOpenAIClient sets a custom HTTP client.
func WithOpenAIClient(client *http.Client) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.client = client }
}

// NewOpenAIEmbedder creates an OpenAIEmbedder for the server at host.
// Empty host or model fall back to the local defaults.
func NewOpenAIEmbedder(host string, model string, opts ...OpenAIOption) *OpenAIEmbedder {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	e := &OpenAIEmbedder{
		baseURL: strings.TrimRight(host, "/"),
		model:   model,
		client:  &http.Client{Timeout: DefaultOpenAITimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements siteindex.Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(openAIEmbeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINTERNAL, "encode embeddings request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EINTERNAL, "build embeddings request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE, "openai-compatible embeddings: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE,
			"openai-compatible embeddings: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded openAIEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE, "decode embeddings response: %v", err)
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, siteindex.Errorf(siteindex.EUNAVAILABLE,
			"openai-compatible embeddings: empty response for model %q", e.model)
	}
	return decoded.Data[0].Embedding, nil
}
