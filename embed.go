package siteindex

import "context"

// Embedder converts a unit of text into a fixed-dimensionality vector.
// Implementations call an external embedding service; each call carries its
// own network timeout.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chain is an ordered list of embedding backends tried in sequence. The
// first backend to succeed wins; failures from every backend except the last
// are discarded and the last backend's error propagates to the caller.
//
// The standard wiring is an Ollama-native primary followed by an
// OpenAI-compatible fallback, so a primary-protocol mismatch degrades
// gracefully while a genuinely unreachable service still surfaces.
type Chain []Embedder

var _ Embedder = (Chain)(nil)

// Embed tries each backend in order and returns the first successful vector.
func (c Chain) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(c) == 0 {
		return nil, Errorf(EINVALID, "no embedding backends configured")
	}
	var lastErr error
	for _, backend := range c {
		vec, err := backend.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// EmbedAll embeds texts one at a time, in input order. Any failure aborts
// the batch and returns the underlying error.
func EmbedAll(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}
